package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/tradewatch/internal/feed"
	"github.com/rxtech-lab/tradewatch/internal/version"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSymbol              = "BTCUSDT"
	DefaultThreshold           = 95
	DefaultDrainInterval       = time.Second
	DefaultQueueCapacity       = 1024
	DefaultChartWindow         = 240
	DefaultChannelID           = "trades_channel"
	DefaultChannelName         = "Trades Notifications"
	DefaultLogOutput           = "tradewatch.log"
	ImportanceHigh             = "high"
	ImportanceDefault          = "default"
	ImportanceLow              = "low"
	defaultLogLevel            = "info"
	defaultNotificationEnabled = true
)

// Config is the tradewatch configuration file.
type Config struct {
	Version       string             `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Config layout version this file was written for (e.g. 1.0.0)"`
	Symbol        string             `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Trading pair to watch (e.g. BTCUSDT),default=BTCUSDT" validate:"required,alphanum"`
	Endpoint      string             `yaml:"endpoint" json:"endpoint,omitempty" jsonschema:"title=Endpoint,description=Full websocket stream URL. Overrides symbol and testnet when set" validate:"omitempty,url"`
	Testnet       bool               `yaml:"testnet" json:"testnet,omitempty" jsonschema:"title=Testnet,description=Use the Binance testnet stream base URL"`
	Threshold     float64            `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,description=Trade quantity above which an alert is raised,minimum=0,default=95" validate:"gte=0"`
	DrainInterval time.Duration      `yaml:"drain_interval" json:"drain_interval" jsonschema:"title=Drain Interval,description=How often one queued frame is rendered (e.g. 1s),default=1s" validate:"gt=0"`
	QueueCapacity int                `yaml:"queue_capacity" json:"queue_capacity" jsonschema:"title=Queue Capacity,description=Maximum number of frames waiting to be rendered,minimum=1,default=1024" validate:"gte=1"`
	ChartWindow   int                `yaml:"chart_window" json:"chart_window" jsonschema:"title=Chart Window,description=Number of most recent points drawn on the chart,minimum=2,default=240" validate:"gte=2"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications" jsonschema:"title=Notifications,description=Local alert delivery settings"`
	Log           LogConfig          `yaml:"log" json:"log" jsonschema:"title=Log,description=Logging settings"`
	StatsOutput   string             `yaml:"stats_output" json:"stats_output,omitempty" jsonschema:"title=Stats Output,description=YAML file the session counters are written to on exit"`
}

// NotificationConfig describes the local notification channel.
type NotificationConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Show desktop notifications for large trades,default=true"`
	ChannelID   string `yaml:"channel_id" json:"channel_id" jsonschema:"title=Channel ID,default=trades_channel" validate:"required"`
	ChannelName string `yaml:"channel_name" json:"channel_name" jsonschema:"title=Channel Name,default=Trades Notifications" validate:"required"`
	Importance  string `yaml:"importance" json:"importance" jsonschema:"title=Importance,enum=high,enum=default,enum=low,default=high" validate:"required,oneof=high default low"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"required,oneof=debug info warn error"`
	Output string `yaml:"output" json:"output,omitempty" jsonschema:"title=Output,description=Log file path. stdout and stderr are accepted"`
}

// Default returns the configuration that reproduces the stock BTCUSDT watcher.
func Default() Config {
	return Config{
		Version:       version.ConfigSchemaVersion,
		Symbol:        DefaultSymbol,
		Endpoint:      "",
		Testnet:       false,
		Threshold:     DefaultThreshold,
		DrainInterval: DefaultDrainInterval,
		QueueCapacity: DefaultQueueCapacity,
		ChartWindow:   DefaultChartWindow,
		Notifications: NotificationConfig{
			Enabled:     defaultNotificationEnabled,
			ChannelID:   DefaultChannelID,
			ChannelName: DefaultChannelName,
			Importance:  ImportanceHigh,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Output: "",
		},
		StatsOutput: "",
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	// a file without a version key predates versioning
	cfg.Version = ""

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := version.CheckConfigVersion(cfg.Version); err != nil {
		return Config{}, err
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Normalize upper-cases the symbol and trims whitespace from string fields.
func (c *Config) Normalize() {
	c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Notifications.Importance = strings.ToLower(strings.TrimSpace(c.Notifications.Importance))
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// ThresholdDecimal returns the volume threshold for exact comparison.
func (c *Config) ThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Threshold)
}

// StreamURL returns the websocket URL for the configured symbol.
func (c *Config) StreamURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	return feed.StreamURL(feed.BaseURL(c.Testnet), c.Symbol)
}

// StreamSymbol returns the symbol the stream carries. An endpoint of the form
// <base>/<symbol>@trade takes precedence over Symbol.
func (c *Config) StreamSymbol() string {
	if c.Endpoint != "" {
		if symbol, ok := feed.SymbolFromURL(c.Endpoint); ok {
			return symbol
		}
	}

	return c.Symbol
}

// DatasetLabel returns the chart label, e.g. "BTC/USDT Price".
func (c *Config) DatasetLabel() string {
	return PairLabel(c.StreamSymbol()) + " Price"
}

var quoteAssets = []string{"USDT", "USDC", "FDUSD", "BUSD", "TUSD", "BTC", "ETH", "BNB", "EUR", "TRY"}

// PairLabel splits a symbol on a known quote asset: BTCUSDT -> BTC/USDT.
// Symbols without a known quote asset are returned unchanged.
func PairLabel(symbol string) string {
	symbol = strings.ToUpper(symbol)
	for _, quote := range quoteAssets {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote) + "/" + quote
		}
	}

	return symbol
}
