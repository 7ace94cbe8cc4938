package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/tradewatch/internal/alerts"
	"github.com/rxtech-lab/tradewatch/internal/config"
	"github.com/rxtech-lab/tradewatch/internal/feed"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/queue"
	"github.com/rxtech-lab/tradewatch/internal/series"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"go.uber.org/zap"
)

const statusBufferSize = 16

type statusEvent struct {
	status types.FeedStatus
	err    error
}

// Option configures a Session.
type Option func(*Session)

// WithStatusHandler registers a handler that sees every feed status change
// as it happens, on the feed goroutine.
func WithStatusHandler(handler feed.StatusHandler) Option {
	return func(s *Session) {
		s.statusHandler = handler
	}
}

// WithDialer replaces the websocket dialer used by the feed.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(s *Session) {
		s.dialer = dialer
	}
}

// Session watches one trade stream. The feed goroutine calls Ingest for every
// frame; the drain timer calls Tick, which applies at most one frame.
type Session struct {
	cfg config.Config
	log *logger.Logger

	client    *feed.Client
	queue     *queue.FrameQueue
	evaluator *alerts.Evaluator
	series    *series.PriceSeries
	stats     *StatsTracker

	dialer        *websocket.Dialer
	statusHandler feed.StatusHandler
	statusEvents  chan statusEvent

	// drainMu serializes Tick against Close.
	drainMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewSession wires the feed, queue, evaluator, series and stats for cfg.
// The notifier receives every alert; nil only logs alerts.
func NewSession(cfg config.Config, notifier alerts.Notifier, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		cfg:           cfg,
		log:           log,
		client:        nil,
		queue:         queue.New(cfg.QueueCapacity),
		evaluator:     alerts.NewEvaluator(cfg.ThresholdDecimal(), notifier, log),
		series:        series.New(),
		stats:         NewStatsTracker(cfg.StreamSymbol(), cfg.StatsOutput, log),
		dialer:        nil,
		statusHandler: nil,
		statusEvents:  make(chan statusEvent, statusBufferSize),
		drainMu:       sync.Mutex{},
		closed:        atomic.Bool{},
		closeOnce:     sync.Once{},
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	feedOpts := []feed.Option{feed.WithStatusHandler(s.handleStatus)}
	if s.dialer != nil {
		feedOpts = append(feedOpts, feed.WithDialer(s.dialer))
	}

	s.client = feed.NewClient(cfg.StreamURL(), s.Ingest, log, feedOpts...)

	return s
}

// Start connects the feed. A connect failure is returned; the session stays
// usable for Close but never receives frames.
func (s *Session) Start(ctx context.Context) error {
	if s.closed.Load() {
		return errors.New(errors.ErrCodeSessionClosed, "session is closed")
	}

	s.log.Info("Starting trade watch",
		zap.String("symbol", s.cfg.StreamSymbol()),
		zap.String("url", s.client.URL()),
		zap.String("threshold", s.evaluator.Threshold().String()),
		zap.Duration("drain_interval", s.cfg.DrainInterval),
		zap.Int("queue_capacity", s.queue.Cap()),
	)

	return s.client.Connect(ctx)
}

// Ingest accepts one raw frame from the feed. The frame is queued for
// rendering, or dropped if the queue is full, and is then inspected for
// volume regardless. It never blocks.
func (s *Session) Ingest(frame []byte) {
	if s.closed.Load() {
		return
	}

	s.stats.RecordReceived()

	if !s.queue.Offer(frame) {
		s.stats.RecordDropped()
		s.log.Warn("frame queue full, dropping frame",
			zap.Int("capacity", s.queue.Cap()),
			zap.ByteString("frame", frame),
		)
	}

	alert, err := s.evaluator.Inspect(frame)
	if err != nil {
		s.stats.RecordQuantityParseFailure()

		return
	}

	if alert.IsSome() {
		s.stats.RecordAlert()
	}
}

// Tick removes at most one frame from the queue and applies its price.
// ok is false when the queue was empty, the price was unreadable, or the
// session is closed.
func (s *Session) Tick() (series.Update, bool) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	if s.closed.Load() {
		return series.Update{}, false //nolint:exhaustruct
	}

	frame, ok := s.queue.Poll()
	if !ok {
		return series.Update{}, false //nolint:exhaustruct
	}

	price, err := feed.ExtractPrice(frame)
	if err != nil {
		s.stats.RecordPriceParseFailure()
		s.log.Warn("failed to read trade price", zap.Error(err), zap.ByteString("frame", frame))

		return series.Update{}, false //nolint:exhaustruct
	}

	update := s.series.Apply(price)
	s.stats.RecordPoint()

	return update, true
}

// Run drains the queue every drain interval until ctx is done or the session
// is closed. It is the headless counterpart of the terminal screen.
func (s *Session) Run(ctx context.Context, callbacks Callbacks) error {
	var runErr error

	defer func() {
		if callbacks.OnSessionStop != nil {
			(*callbacks.OnSessionStop)(runErr)
		}
	}()

	if s.closed.Load() {
		runErr = errors.New(errors.ErrCodeSessionClosed, "session is closed")

		return runErr
	}

	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case event := <-s.statusEvents:
			if callbacks.OnFeedStatusChange != nil {
				(*callbacks.OnFeedStatusChange)(event.status, event.err)
			}
		case <-ticker.C:
			update, ok := s.Tick()
			if !ok || callbacks.OnPriceUpdate == nil {
				continue
			}

			if err := (*callbacks.OnPriceUpdate)(update); err != nil {
				runErr = errors.Wrap(errors.ErrCodeCallbackFailed, "price update callback failed", err)

				return runErr
			}
		}
	}
}

// Close tears the session down: the feed is closed with a normal-closure
// frame, draining stops, and the stats file is written if configured.
// It is safe to call more than once.
func (s *Session) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		s.closed.Store(true)

		// wait for an in-flight Tick
		s.drainMu.Lock()
		discarded := s.queue.Drain()
		s.drainMu.Unlock()

		closeErr = s.client.Close()
		close(s.done)

		if err := s.stats.WriteStatsYAML(); err != nil {
			s.log.Warn("Failed to write session stats", zap.Error(err))
		} else if path := s.stats.GetStatsOutputPath(); path != "" {
			s.log.Info("Session stats saved", zap.String("path", path))
		}

		stats := s.stats.GetStats()
		s.log.Info("Trade watch stopped",
			zap.Int64("frames_received", stats.FramesReceived),
			zap.Int64("frames_dropped", stats.FramesDropped),
			zap.Int64("points_applied", stats.PointsApplied),
			zap.Int64("alerts_raised", stats.AlertsRaised),
			zap.Int("frames_discarded", discarded),
		)
	})

	return closeErr
}

func (s *Session) handleStatus(status types.FeedStatus, err error) {
	if s.statusHandler != nil {
		s.statusHandler(status, err)
	}

	select {
	case s.statusEvents <- statusEvent{status: status, err: err}:
	default:
	}
}

// Done is closed by Close.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Config returns the session configuration.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Series returns the price series.
func (s *Session) Series() *series.PriceSeries {
	return s.series
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() types.SessionStats {
	return s.stats.GetStats()
}

// Status returns the feed connection status.
func (s *Session) Status() types.FeedStatus {
	return s.client.Status()
}

// QueueLen returns the number of frames waiting to be drained.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}
