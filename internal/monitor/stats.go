package monitor

import (
	"sync"
	"time"

	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"go.uber.org/zap"
)

// StatsTracker counts what happened to every frame of a session.
type StatsTracker struct {
	stats types.SessionStats

	// Stats output path
	statsOutputPath string

	mu     sync.Mutex
	logger *logger.Logger
}

// NewStatsTracker creates a new StatsTracker instance.
func NewStatsTracker(symbol string, statsOutputPath string, log *logger.Logger) *StatsTracker {
	return &StatsTracker{
		stats:           types.NewSessionStats(symbol),
		statsOutputPath: statsOutputPath,
		mu:              sync.Mutex{},
		logger:          log,
	}
}

func (s *StatsTracker) update(fn func(stats *types.SessionStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.stats)
	s.stats.LastUpdated = time.Now()
}

// RecordReceived counts a frame delivered by the feed.
func (s *StatsTracker) RecordReceived() {
	s.update(func(stats *types.SessionStats) { stats.FramesReceived++ })
}

// RecordDropped counts a frame rejected by a full queue.
func (s *StatsTracker) RecordDropped() {
	s.update(func(stats *types.SessionStats) { stats.FramesDropped++ })
}

// RecordPriceParseFailure counts a drained frame without a readable price.
func (s *StatsTracker) RecordPriceParseFailure() {
	s.update(func(stats *types.SessionStats) { stats.PriceParseFailures++ })
}

// RecordQuantityParseFailure counts a frame without a readable quantity.
func (s *StatsTracker) RecordQuantityParseFailure() {
	s.update(func(stats *types.SessionStats) { stats.QuantityParseFailures++ })
}

// RecordPoint counts a point appended to the series.
func (s *StatsTracker) RecordPoint() {
	s.update(func(stats *types.SessionStats) { stats.PointsApplied++ })
}

// RecordAlert counts a raised alert.
func (s *StatsTracker) RecordAlert() {
	s.update(func(stats *types.SessionStats) { stats.AlertsRaised++ })
}

// GetStats returns a copy of the current counters.
func (s *StatsTracker) GetStats() types.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

// GetStatsOutputPath returns the stats output path.
func (s *StatsTracker) GetStatsOutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statsOutputPath
}

// WriteStatsYAML writes the current counters to the stats output path.
func (s *StatsTracker) WriteStatsYAML() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statsOutputPath == "" {
		return nil // No output path configured
	}

	if err := types.WriteSessionStats(s.statsOutputPath, s.stats); err != nil {
		return err
	}

	s.logger.Debug("Session stats written", zap.String("path", s.statsOutputPath))

	return nil
}
