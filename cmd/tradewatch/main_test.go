package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/tradewatch/internal/alerts"
	"github.com/rxtech-lab/tradewatch/internal/config"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runLoadConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()

	var cfg config.Config
	cmd := &cli.Command{
		Name:  "tradewatch",
		Flags: watchFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			var err error
			cfg, err = loadConfig(c)

			return err
		},
	}

	err := cmd.Run(context.Background(), append([]string{"tradewatch"}, args...))

	return cfg, err
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := runLoadConfig(t)
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfg, err := runLoadConfig(t,
		"--symbol", "ethusdt",
		"--threshold", "10.5",
		"--interval", "250ms",
		"--queue-capacity", "16",
		"--no-desktop-notify",
		"--stats-output", "stats.yaml",
	)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 10.5, cfg.Threshold)
	assert.Equal(t, 250*time.Millisecond, cfg.DrainInterval)
	assert.Equal(t, 16, cfg.QueueCapacity)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "stats.yaml", cfg.StatsOutput)
	assert.Equal(t, "wss://stream.binance.com:9443/ws/ethusdt@trade", cfg.StreamURL())
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: BNBUSDT\nthreshold: 50\n"), 0644))

	cfg, err := runLoadConfig(t, "--config", path, "--threshold", "70")
	require.NoError(t, err)

	assert.Equal(t, "BNBUSDT", cfg.Symbol)
	assert.Equal(t, float64(70), cfg.Threshold)
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	_, err := runLoadConfig(t, "--threshold=-1")
	assert.Error(t, err)

	_, err = runLoadConfig(t, "--log-level", "loud")
	assert.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	cfg := config.Default()
	log := logger.NewNop()

	notifier, ok := newNotifier(cfg, log).(alerts.MultiNotifier)
	require.True(t, ok)
	assert.Len(t, notifier, 2)

	cfg.Notifications.Enabled = false
	extra := alerts.NotifierFunc(nil)
	notifier, ok = newNotifier(cfg, log, extra).(alerts.MultiNotifier)
	require.True(t, ok)
	assert.Len(t, notifier, 2)
}

func TestNewLoggerDefaultsToFileForScreen(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	log, err := newLogger(config.Default(), false)
	require.NoError(t, err)
	log.Info("screen started")
	_ = log.Sync()

	_, err = os.Stat(filepath.Join(dir, config.DefaultLogOutput))
	assert.NoError(t, err)
}

func TestFormatSessionStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.yaml")
	stats := types.NewSessionStats("ETHUSDT")
	stats.FramesReceived = 10
	stats.FramesDropped = 2
	stats.AlertsRaised = 3
	require.NoError(t, types.WriteSessionStats(path, stats))

	read, err := types.ReadSessionStats(path)
	require.NoError(t, err)

	out := formatSessionStats(read)
	assert.Contains(t, out, "Symbol:                  ETHUSDT")
	assert.Contains(t, out, "Frames received:         10")
	assert.Contains(t, out, "Frames dropped:          2")
	assert.Contains(t, out, "Alerts raised:           3")
}

func TestStatsActionRequiresFile(t *testing.T) {
	noFile := &cli.Command{Name: "stats", Action: statsAction}
	assert.Error(t, noFile.Run(context.Background(), []string{"stats"}))

	missing := &cli.Command{Name: "stats", Action: statsAction}
	err := missing.Run(context.Background(), []string{"stats", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.True(t, errors.HasCode(err, errors.ErrCodeStatsReadFailed))
}
