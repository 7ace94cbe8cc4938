package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"go.uber.org/zap"
)

const (
	// CloseReason is sent with the normal-closure frame on teardown.
	CloseReason = "App closed"

	closeWriteTimeout = time.Second
)

// FrameHandler receives every text frame, in arrival order, on the read goroutine.
// It must not block for long and must not call Client.Close.
type FrameHandler func(frame []byte)

// StatusHandler is notified of every status transition. err is set for
// FeedStatusDisconnected transitions caused by a failure. Like FrameHandler it may
// run on the read goroutine and must not call Client.Close.
type StatusHandler func(status types.FeedStatus, err error)

// Option configures a Client.
type Option func(*Client)

// WithStatusHandler registers a callback for status transitions.
func WithStatusHandler(handler StatusHandler) Option {
	return func(c *Client) {
		c.onStatus = handler
	}
}

// WithDialer replaces the default websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// Client owns one websocket connection to a trade stream.
// It does not reconnect: once disconnected it stays disconnected.
type Client struct {
	url      string
	dialer   *websocket.Dialer
	onFrame  FrameHandler
	onStatus StatusHandler
	log      *logger.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	status  types.FeedStatus
	started bool
	closed  bool

	closing   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a client for url. onFrame must not be nil.
func NewClient(url string, onFrame FrameHandler, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		url:       url,
		dialer:    websocket.DefaultDialer,
		onFrame:   onFrame,
		onStatus:  nil,
		log:       log,
		mu:        sync.Mutex{},
		conn:      nil,
		status:    types.FeedStatusIdle,
		started:   false,
		closed:    false,
		closing:   atomic.Bool{},
		closeOnce: sync.Once{},
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the stream URL.
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status.
func (c *Client) Status() types.FeedStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// Done is closed when the read goroutine has exited.
// It is never closed if Connect was not called or failed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Connect opens the websocket and starts reading frames.
// ctx bounds the handshake only; there is no other timeout.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return errors.New(errors.ErrCodeFeedClosed, "feed client is closed")
	}

	if c.started {
		c.mu.Unlock()

		return errors.New(errors.ErrCodeFeedAlreadyOpen, "feed client already connected")
	}

	c.started = true
	c.mu.Unlock()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		fields := []zap.Field{zap.String("url", c.url), zap.Error(err)}
		if resp != nil {
			fields = append(fields, zap.Int("status_code", resp.StatusCode))
		}

		c.log.Error("feed connection failed", fields...)
		c.setStatus(types.FeedStatusDisconnected, err)

		return errors.Wrapf(errors.ErrCodeFeedConnectFailed, err, "failed to connect to %s", c.url)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()

		return errors.New(errors.ErrCodeFeedClosed, "feed client closed during connect")
	}

	c.conn = conn
	c.mu.Unlock()

	c.log.Info("feed connection opened", zap.String("url", c.url))
	c.setStatus(types.FeedStatusConnected, nil)

	go c.readLoop(conn)

	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.done)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if c.closing.Load() {
				return
			}

			c.log.Error("feed connection lost", zap.String("url", c.url), zap.Error(err))
			c.setStatus(types.FeedStatusDisconnected, errors.Wrap(errors.ErrCodeFeedReadFailed, "failed to read frame", err))

			return
		}

		if messageType != websocket.TextMessage {
			c.log.Debug("ignoring non-text frame", zap.Int("type", messageType), zap.Int("size", len(data)))

			continue
		}

		c.onFrame(data)
	}
}

// Close sends a normal-closure frame, releases the socket and waits for the
// read goroutine. It is safe to call more than once and before Connect.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.closing.Store(true)

		c.mu.Lock()
		c.closed = true
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, CloseReason)
			if err := conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeWriteTimeout)); err != nil {
				c.log.Debug("failed to send close frame", zap.Error(err))
			}

			closeErr = conn.Close()
			<-c.done

			c.log.Info("feed connection closed", zap.String("url", c.url))
		}

		c.setStatus(types.FeedStatusClosed, nil)
	})

	return closeErr
}

func (c *Client) setStatus(status types.FeedStatus, err error) {
	c.mu.Lock()
	if c.status == status || (c.status == types.FeedStatusClosed) {
		c.mu.Unlock()

		return
	}

	c.status = status
	handler := c.onStatus
	c.mu.Unlock()

	if handler != nil {
		handler(status, err)
	}
}
