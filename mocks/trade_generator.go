package mocks

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rxtech-lab/tradewatch/internal/feed"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/shopspring/decimal"
)

// TradeGenerator generates Binance trade frames for testing and offline runs.
// It is safe for concurrent use.
type TradeGenerator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	config  GeneratorConfig
	price   float64
	tradeID int64
	now     time.Time
	count   int
}

// GeneratorConfig configures how trades are generated.
type GeneratorConfig struct {
	// Symbol is the trading pair (e.g., "BTCUSDT")
	Symbol string
	// StartTime is the trade time of the first trade
	StartTime time.Time
	// Interval is the trade time step between trades
	Interval time.Duration
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per trade (0.0005 = 0.05%)
	Volatility float64
	// QuantityBase is the average quantity of a regular trade
	QuantityBase float64
	// LargeEvery makes every n-th trade a large one; 0 disables large trades
	LargeEvery int
	// LargeQuantity is the quantity of a large trade
	LargeQuantity float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:        "BTCUSDT",
		StartTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:      100 * time.Millisecond,
		InitialPrice:  65000.0,
		Volatility:    0.0005, // 0.05% per trade
		QuantityBase:  0.05,
		LargeEvery:    20,
		LargeQuantity: 120,
	}
}

// NewTradeGenerator creates a new TradeGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewTradeGenerator(seed int64, config GeneratorConfig) *TradeGenerator {
	return &TradeGenerator{
		mu:      sync.Mutex{},
		rng:     rand.New(rand.NewSource(seed)),
		config:  config,
		price:   config.InitialPrice,
		tradeID: 1,
		now:     config.StartTime,
		count:   0,
	}
}

// NextTrade returns the next trade of the random walk.
func (g *TradeGenerator) NextTrade() types.Trade {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Box-Muller transform for a normally distributed step
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	next := g.price * (1 + g.config.Volatility*z)
	if next <= 0 {
		next = g.price * 0.99 // Prevent negative prices
	}
	g.price = next

	g.count++
	quantity := g.config.QuantityBase * (0.2 + g.rng.Float64()*1.6)
	if g.config.LargeEvery > 0 && g.count%g.config.LargeEvery == 0 {
		quantity = g.config.LargeQuantity
	}

	trade := types.Trade{
		Symbol:       g.config.Symbol,
		TradeID:      g.tradeID,
		Price:        decimal.NewFromFloat(roundToDecimals(g.price, 2)),
		Quantity:     decimal.NewFromFloat(roundToDecimals(quantity, 5)),
		TradeTime:    g.now,
		IsBuyerMaker: g.rng.Intn(2) == 0,
	}

	g.tradeID++
	g.now = g.now.Add(g.config.Interval)

	return trade
}

// Next returns the next trade encoded as a Binance trade frame.
func (g *TradeGenerator) Next() ([]byte, error) {
	trade := g.NextTrade()

	return feed.EncodeTrade(trade, trade.TradeTime)
}

// Frames returns n consecutive frames.
func (g *TradeGenerator) Frames(n int) ([][]byte, error) {
	frames := make([][]byte, 0, n)

	for i := 0; i < n; i++ {
		frame, err := g.Next()
		if err != nil {
			return nil, err
		}

		frames = append(frames, frame)
	}

	return frames, nil
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
