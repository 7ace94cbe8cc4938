package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/tradewatch/internal/alerts"
	"github.com/rxtech-lab/tradewatch/internal/config"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/monitor"
	"github.com/rxtech-lab/tradewatch/internal/series"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("symbol") {
		cfg.Symbol = cmd.String("symbol")
	}
	if cmd.IsSet("endpoint") {
		cfg.Endpoint = cmd.String("endpoint")
	}
	if cmd.IsSet("testnet") {
		cfg.Testnet = cmd.Bool("testnet")
	}
	if cmd.IsSet("threshold") {
		cfg.Threshold = float64(cmd.Float("threshold"))
	}
	if cmd.IsSet("interval") {
		cfg.DrainInterval = cmd.Duration("interval")
	}
	if cmd.IsSet("queue-capacity") {
		cfg.QueueCapacity = int(cmd.Int("queue-capacity"))
	}
	if cmd.IsSet("chart-window") {
		cfg.ChartWindow = int(cmd.Int("chart-window"))
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-output") {
		cfg.Log.Output = cmd.String("log-output")
	}
	if cmd.IsSet("stats-output") {
		cfg.StatsOutput = cmd.String("stats-output")
	}
	if cmd.Bool("no-desktop-notify") {
		cfg.Notifications.Enabled = false
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// newLogger creates the logger. The screen owns the terminal, so it logs to a
// file unless told otherwise.
func newLogger(cfg config.Config, headless bool) (*logger.Logger, error) {
	output := cfg.Log.Output
	if output == "" && !headless {
		output = config.DefaultLogOutput
	}

	var outputs []string
	if output != "" {
		outputs = []string{output}
	}

	return logger.NewLoggerWithOptions(logger.Options{Level: cfg.Log.Level, OutputPaths: outputs})
}

// newNotifier builds the alert fan-out: the log always, the desktop when enabled.
func newNotifier(cfg config.Config, log *logger.Logger, extra ...alerts.Notifier) alerts.Notifier {
	notifiers := alerts.MultiNotifier{alerts.NewLogNotifier(log)}

	if cfg.Notifications.Enabled {
		notifiers = append(notifiers, alerts.NewDesktopNotifier(alerts.Channel{
			ID:         cfg.Notifications.ChannelID,
			Name:       cfg.Notifications.ChannelName,
			Importance: cfg.Notifications.Importance,
		}, log))
	}

	return append(notifiers, extra...)
}

// watchAction starts watching the configured trade stream.
func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	headless := cmd.Bool("headless")

	log, err := newLogger(cfg, headless)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if headless {
		return runHeadless(ctx, cfg, log)
	}

	return runScreen(ctx, cfg, log)
}

// runHeadless drains the stream without a screen and prints each update.
func runHeadless(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	session := monitor.NewSession(cfg, newNotifier(cfg, log), log)
	defer func() { _ = session.Close() }()

	if err := session.Start(ctx); err != nil {
		log.Error("Failed to start feed", zap.Error(err))

		return err
	}

	onPriceUpdate := monitor.OnPriceUpdateCallback(func(update series.Update) error {
		fmt.Printf("[%d] %s | %s\n", update.Point.Index, update.PriceText(), update.ChangeText())

		return nil
	})
	onFeedStatusChange := monitor.OnFeedStatusChangeCallback(func(status types.FeedStatus, err error) {
		if err != nil {
			log.Warn("Feed status changed", zap.String("status", string(status)), zap.Error(err))

			return
		}

		log.Info("Feed status changed", zap.String("status", string(status)))
	})

	return session.Run(ctx, monitor.Callbacks{
		OnPriceUpdate:      &onPriceUpdate,
		OnFeedStatusChange: &onFeedStatusChange,
		OnSessionStop:      nil,
	})
}

// runScreen shows the chart screen until the user quits.
func runScreen(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	sink := newProgramSink(sinkBufferSize)
	defer sink.Stop()

	toScreen := alerts.NotifierFunc(func(alert types.Alert) error {
		sink.Send(AlertMsg{Alert: alert})

		return nil
	})

	session := monitor.NewSession(cfg, newNotifier(cfg, log, toScreen), log,
		monitor.WithStatusHandler(func(status types.FeedStatus, err error) {
			sink.Send(FeedStatusMsg{Status: status, Err: err})
		}),
	)
	defer func() { _ = session.Close() }()

	p := tea.NewProgram(NewModel(session), tea.WithAltScreen(), tea.WithContext(ctx))
	sink.SetSender(p.Send)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

// formatSessionStats renders a saved stats file for the stats command.
func formatSessionStats(stats types.SessionStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol:                  %s\n", stats.Symbol)
	fmt.Fprintf(&b, "Session start:           %s\n", stats.SessionStart.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last updated:            %s\n", stats.LastUpdated.Format(time.RFC3339))
	fmt.Fprintf(&b, "Frames received:         %d\n", stats.FramesReceived)
	fmt.Fprintf(&b, "Frames dropped:          %d\n", stats.FramesDropped)
	fmt.Fprintf(&b, "Price parse failures:    %d\n", stats.PriceParseFailures)
	fmt.Fprintf(&b, "Quantity parse failures: %d\n", stats.QuantityParseFailures)
	fmt.Fprintf(&b, "Points applied:          %d\n", stats.PointsApplied)
	fmt.Fprintf(&b, "Alerts raised:           %d\n", stats.AlertsRaised)

	return b.String()
}

func statsAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing stats file, usage: tradewatch stats FILE")
	}

	stats, err := types.ReadSessionStats(path)
	if err != nil {
		return err
	}

	fmt.Print(formatSessionStats(stats))

	return nil
}

func versionAction(_ context.Context, _ *cli.Command) error {
	fmt.Printf("tradewatch %s (config schema %s)\n", version.GetVersion(), version.ConfigSchemaVersion)

	return nil
}

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file",
		},
		&cli.StringFlag{
			Name:    "symbol",
			Aliases: []string{"s"},
			Usage:   "Trading pair to watch",
			Value:   config.DefaultSymbol,
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Full websocket stream URL, overrides --symbol and --testnet",
		},
		&cli.BoolFlag{
			Name:  "testnet",
			Usage: "Use the Binance testnet stream",
		},
		&cli.FloatFlag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Alert when a trade quantity is strictly greater than this",
			Value:   config.DefaultThreshold,
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "Drain interval; one queued frame is rendered per interval",
			Value:   config.DefaultDrainInterval,
		},
		&cli.IntFlag{
			Name:  "queue-capacity",
			Usage: "Maximum number of frames waiting to be rendered",
			Value: config.DefaultQueueCapacity,
		},
		&cli.IntFlag{
			Name:  "chart-window",
			Usage: "Number of most recent points drawn on the chart",
			Value: config.DefaultChartWindow,
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Print updates to stdout instead of showing the chart screen",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-output",
			Usage: fmt.Sprintf("Log file (defaults to %s for the screen and stdout when headless)", config.DefaultLogOutput),
		},
		&cli.StringFlag{
			Name:  "stats-output",
			Usage: "Write session counters to this YAML file on exit",
		},
		&cli.BoolFlag{
			Name:  "no-desktop-notify",
			Usage: "Do not show desktop notifications for large trades",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "tradewatch",
		Usage:   "Chart a live trade stream and alert on large trades",
		Version: version.GetVersion(),
		// without a subcommand the root behaves like watch
		Flags:    watchFlags(),
		Action:   watchAction,
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Watch the trade stream (default)",
				Flags:  watchFlags(),
				Action: watchAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
			{
				Name:      "stats",
				Usage:     "Print a session stats file written with --stats-output",
				ArgsUsage: "FILE",
				Action:    statsAction,
			},
			{
				Name:   "version",
				Usage:  "Print the build version",
				Action: versionAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
