// Package feedtest provides an in-process Binance-compatible trade stream for tests
// and offline runs. Connect a feed.Client to URL(symbol) and push frames with Broadcast.
package feedtest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// FrameSource produces frames for the streaming loop.
type FrameSource interface {
	Next() ([]byte, error)
}

// CloseEvent is a close frame received from a client.
type CloseEvent struct {
	Symbol string
	Code   int
	Text   string
}

// Config holds configuration for the server.
type Config struct {
	// Source, when set, is streamed to every connection at Interval.
	Source FrameSource
	// Interval between streamed frames. Defaults to 100ms.
	Interval time.Duration
}

type connection struct {
	symbol string
	conn   *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

// Server is a mock Binance trade stream.
type Server struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	connections map[*websocket.Conn]*connection
	closeEvents []CloseEvent
	framesSent  int

	source   FrameSource
	interval time.Duration

	connected chan struct{}
	closed    chan CloseEvent
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewServer creates a new server. Call Start to listen.
func NewServer(config Config) *Server {
	interval := config.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	return &Server{
		mu:         sync.RWMutex{},
		httpServer: nil,
		listener:   nil,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		connections: make(map[*websocket.Conn]*connection),
		closeEvents: make([]CloseEvent, 0),
		framesSent:  0,
		source:      config.Source,
		interval:    interval,
		connected:   make(chan struct{}, 64),
		closed:      make(chan CloseEvent, 64),
		stop:        make(chan struct{}),
		stopOnce:    sync.Once{},
	}
}

// Start starts the server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/ws/{symbol}@trade", s.handleWebSocket)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("feedtest server error: %v\n", err)
		}
	}()

	if s.source != nil {
		go s.stream()
	}

	return nil
}

// Stop closes every connection and shuts the server down.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	s.DropConnections()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the websocket base URL, the equivalent of wss://stream.binance.com:9443/ws.
func (s *Server) BaseURL() string {
	return "ws://" + s.Address() + "/ws"
}

// URL returns the trade stream URL for symbol.
func (s *Server) URL(symbol string) string {
	return s.BaseURL() + "/" + strings.ToLower(symbol) + "@trade"
}

// Broadcast writes frame as a text message to every connection.
// It returns the number of connections written to.
func (s *Server) Broadcast(frame []byte) int {
	return s.write(websocket.TextMessage, frame)
}

// BroadcastBinary writes frame as a binary message to every connection.
func (s *Server) BroadcastBinary(frame []byte) int {
	return s.write(websocket.BinaryMessage, frame)
}

func (s *Server) write(messageType int, frame []byte) int {
	s.mu.RLock()
	targets := make([]*connection, 0, len(s.connections))
	for _, c := range s.connections {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(messageType, frame)
		c.writeMu.Unlock()

		if err == nil {
			sent++
		}
	}

	s.mu.Lock()
	s.framesSent += sent
	s.mu.Unlock()

	return sent
}

// DropConnections closes every connection without a close handshake,
// the way a network failure would.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.connections {
		conn.Close()
	}

	s.connections = make(map[*websocket.Conn]*connection)
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.connections)
}

// FramesSent returns the number of frames written across all connections.
func (s *Server) FramesSent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.framesSent
}

// WaitForConnections blocks until at least n connections are open or timeout elapses.
func (s *Server) WaitForConnections(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)

	for s.ConnectionCount() < n {
		select {
		case <-s.connected:
		case <-deadline:
			return s.ConnectionCount() >= n
		}
	}

	return true
}

// WaitForClose blocks until a client sends a close frame or timeout elapses.
func (s *Server) WaitForClose(timeout time.Duration) (CloseEvent, bool) {
	select {
	case event := <-s.closed:
		return event, true
	case <-time.After(timeout):
		return CloseEvent{}, false
	}
}

// CloseEvents returns every close frame received so far.
func (s *Server) CloseEvents() []CloseEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]CloseEvent, len(s.closeEvents))
	copy(events, s.closeEvents)

	return events
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.connections[conn] = &connection{symbol: symbol, conn: conn, writeMu: sync.Mutex{}}
	s.mu.Unlock()

	select {
	case s.connected <- struct{}{}:
	default:
	}

	defer func() {
		s.mu.Lock()
		delete(s.connections, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// The trade stream is one-way; reading only services control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				s.recordClose(CloseEvent{Symbol: symbol, Code: closeErr.Code, Text: closeErr.Text})
			}

			return
		}
	}
}

func (s *Server) recordClose(event CloseEvent) {
	s.mu.Lock()
	s.closeEvents = append(s.closeEvents, event)
	s.mu.Unlock()

	select {
	case s.closed <- event:
	default:
	}
}

func (s *Server) stream() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			frame, err := s.source.Next()
			if err != nil {
				continue
			}

			s.Broadcast(frame)
		}
	}
}
