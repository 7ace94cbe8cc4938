package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SessionStatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func (s *SessionStatisticsTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "session_statistics_test_*")
	s.Require().NoError(err)
	s.tempDir = tempDir
}

func (s *SessionStatisticsTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

func TestSessionStatisticsTestSuite(t *testing.T) {
	suite.Run(t, new(SessionStatisticsTestSuite))
}

// ============================================================================
// WriteSessionStats Tests
// ============================================================================

func (s *SessionStatisticsTestSuite) TestWriteSessionStats_RoundTrip() {
	path := filepath.Join(s.tempDir, "stats.yaml")
	stats := NewSessionStats("BTCUSDT")
	stats.FramesReceived = 12
	stats.FramesDropped = 2
	stats.AlertsRaised = 1

	s.Require().NoError(WriteSessionStats(path, stats))

	read, err := ReadSessionStats(path)
	s.Require().NoError(err)
	s.Equal("BTCUSDT", read.Symbol)
	s.Equal(int64(12), read.FramesReceived)
	s.Equal(int64(2), read.FramesDropped)
	s.Equal(int64(1), read.AlertsRaised)
	s.WithinDuration(stats.SessionStart, read.SessionStart, time.Second)
}

func (s *SessionStatisticsTestSuite) TestWriteSessionStats_UsesSnakeCaseKeys() {
	path := filepath.Join(s.tempDir, "stats.yaml")
	s.Require().NoError(WriteSessionStats(path, NewSessionStats("ETHUSDT")))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(data), "frames_received: 0")
	s.Contains(string(data), "symbol: ETHUSDT")
}

func (s *SessionStatisticsTestSuite) TestWriteSessionStats_InvalidDirectory() {
	err := WriteSessionStats(filepath.Join(s.tempDir, "missing", "stats.yaml"), NewSessionStats("BTCUSDT"))
	s.Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStatsWriteFailed))
}

func (s *SessionStatisticsTestSuite) TestReadSessionStats_MissingFile() {
	_, err := ReadSessionStats(filepath.Join(s.tempDir, "nope.yaml"))
	s.Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStatsReadFailed))
}

func (s *SessionStatisticsTestSuite) TestReadSessionStats_MalformedFile() {
	path := filepath.Join(s.tempDir, "broken.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("frames_received: [not a number"), 0644))

	_, err := ReadSessionStats(path)
	s.True(errors.HasCode(err, errors.ErrCodeStatsReadFailed))
}

// ============================================================================
// Alert Tests
// ============================================================================

func (s *SessionStatisticsTestSuite) TestNewVolumeAlert() {
	before := time.Now().Add(-time.Second)
	alert := NewVolumeAlert(decimal.RequireFromString("96.5"), decimal.NewFromInt(95))

	s.NotEmpty(alert.ID)
	s.Equal(VolumeAlertTitle, alert.Title)
	s.Equal("Trade volume: 96.5", alert.Message)
	s.True(alert.CreatedAt.After(before))
	s.True(alert.Threshold.Equal(decimal.NewFromInt(95)))
}

func (s *SessionStatisticsTestSuite) TestNewVolumeAlert_UniqueIDs() {
	a := NewVolumeAlert(decimal.NewFromInt(100), decimal.NewFromInt(95))
	b := NewVolumeAlert(decimal.NewFromInt(100), decimal.NewFromInt(95))
	s.NotEqual(a.ID, b.ID)
}

func (s *SessionStatisticsTestSuite) TestAlertWithTrade() {
	alert := NewVolumeAlert(decimal.NewFromInt(100), decimal.NewFromInt(95)).
		WithTrade(Trade{Symbol: "BTCUSDT", TradeID: 42}) //nolint:exhaustruct

	s.Equal("BTCUSDT", alert.Symbol)
	s.Equal(int64(42), alert.TradeID)
}

func (s *SessionStatisticsTestSuite) TestFeedStatusIsConnected() {
	s.True(FeedStatusConnected.IsConnected())
	s.False(FeedStatusIdle.IsConnected())
	s.False(FeedStatusDisconnected.IsConnected())
	s.False(FeedStatusClosed.IsConnected())
}
