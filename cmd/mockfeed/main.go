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

	"github.com/rxtech-lab/tradewatch/internal/feed/feedtest"
	"github.com/rxtech-lab/tradewatch/mocks"
	"github.com/urfave/cli/v3"
)

// generatorConfig builds the trade generator settings from the flags.
func generatorConfig(cmd *cli.Command) mocks.GeneratorConfig {
	cfg := mocks.DefaultConfig()
	cfg.Symbol = strings.ToUpper(cmd.String("symbol"))
	cfg.StartTime = time.Now().UTC()
	cfg.Interval = cmd.Duration("interval")
	cfg.InitialPrice = float64(cmd.Float("initial-price"))
	cfg.LargeEvery = int(cmd.Int("large-every"))
	cfg.LargeQuantity = float64(cmd.Float("large-quantity"))

	return cfg
}

// newServer creates a mock trade stream fed by a seeded generator.
func newServer(cmd *cli.Command) *feedtest.Server {
	cfg := generatorConfig(cmd)

	return feedtest.NewServer(feedtest.Config{
		Source:   mocks.NewTradeGenerator(int64(cmd.Int("seed")), cfg),
		Interval: cfg.Interval,
	})
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	server := newServer(cmd)
	if err := server.Start(cmd.String("addr")); err != nil {
		return fmt.Errorf("failed to start mock feed: %w", err)
	}
	defer func() { _ = server.Stop() }()

	fmt.Printf("Serving %s trades at %s\n", strings.ToUpper(cmd.String("symbol")), server.URL(cmd.String("symbol")))
	fmt.Printf("Run: tradewatch --endpoint %s\n", server.URL(cmd.String("symbol")))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	fmt.Printf("Stopped after %d frames\n", server.FramesSent())

	return nil
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address",
			Value: "127.0.0.1:9443",
		},
		&cli.StringFlag{
			Name:    "symbol",
			Aliases: []string{"s"},
			Usage:   "Trading pair of the generated trades",
			Value:   "BTCUSDT",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "Time between streamed trades",
			Value:   250 * time.Millisecond,
		},
		&cli.FloatFlag{
			Name:  "initial-price",
			Usage: "Price of the first trade",
			Value: 65000,
		},
		&cli.IntFlag{
			Name:  "large-every",
			Usage: "Make every n-th trade a large one (0 disables)",
			Value: 20,
		},
		&cli.FloatFlag{
			Name:  "large-quantity",
			Usage: "Quantity of a large trade",
			Value: 120,
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "Random seed for reproducible streams",
			Value: 42,
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "mockfeed",
		Usage:  "Serve a synthetic Binance trade stream for offline runs",
		Flags:  serveFlags(),
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
