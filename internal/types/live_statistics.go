package types

import (
	"os"
	"time"

	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SessionStats contains diagnostic counters for one watch session.
// They describe the pipeline, not the market; the price series is never written out.
type SessionStats struct {
	// Symbol is the traded pair being watched (e.g., "BTCUSDT").
	Symbol string `yaml:"symbol" json:"symbol"`

	// SessionStart is when the session was created.
	SessionStart time.Time `yaml:"session_start" json:"session_start"`

	// LastUpdated is when any counter last changed.
	LastUpdated time.Time `yaml:"last_updated" json:"last_updated"`

	// FramesReceived counts every frame delivered by the feed.
	FramesReceived int64 `yaml:"frames_received" json:"frames_received"`

	// FramesDropped counts frames rejected because the queue was full.
	FramesDropped int64 `yaml:"frames_dropped" json:"frames_dropped"`

	// PriceParseFailures counts drained frames whose price could not be read.
	PriceParseFailures int64 `yaml:"price_parse_failures" json:"price_parse_failures"`

	// QuantityParseFailures counts frames whose quantity could not be read.
	QuantityParseFailures int64 `yaml:"quantity_parse_failures" json:"quantity_parse_failures"`

	// PointsApplied counts chart points appended.
	PointsApplied int64 `yaml:"points_applied" json:"points_applied"`

	// AlertsRaised counts volume alerts.
	AlertsRaised int64 `yaml:"alerts_raised" json:"alerts_raised"`
}

// NewSessionStats creates zeroed stats for symbol.
func NewSessionStats(symbol string) SessionStats {
	now := time.Now()

	return SessionStats{
		Symbol:                symbol,
		SessionStart:          now,
		LastUpdated:           now,
		FramesReceived:        0,
		FramesDropped:         0,
		PriceParseFailures:    0,
		QuantityParseFailures: 0,
		PointsApplied:         0,
		AlertsRaised:          0,
	}
}

// WriteSessionStats writes session statistics to a YAML file.
func WriteSessionStats(path string, stats SessionStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStatsWriteFailed, "failed to marshal session stats to YAML", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeStatsWriteFailed, err, "failed to write session stats to %s", path)
	}

	return nil
}

// ReadSessionStats reads session statistics from a YAML file.
func ReadSessionStats(path string) (SessionStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionStats{}, errors.Wrapf(errors.ErrCodeStatsReadFailed, err, "failed to read session stats file %s", path)
	}

	var stats SessionStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return SessionStats{}, errors.Wrap(errors.ErrCodeStatsReadFailed, "failed to unmarshal session stats", err)
	}

	return stats, nil
}
