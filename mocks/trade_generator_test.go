package mocks

import (
	"testing"

	"github.com/rxtech-lab/tradewatch/internal/feed"
	"github.com/shopspring/decimal"
)

func TestTradeGenerator_NextTrade(t *testing.T) {
	config := DefaultConfig()
	gen := NewTradeGenerator(42, config)

	var previousID int64
	for i := 0; i < 100; i++ {
		trade := gen.NextTrade()

		if trade.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, trade.Symbol)
		}

		if !trade.Price.IsPositive() {
			t.Errorf("invalid price at index %d: %s", i, trade.Price)
		}

		if trade.TradeID <= previousID {
			t.Errorf("trade ids not increasing at index %d", i)
		}
		previousID = trade.TradeID
	}
}

func TestTradeGenerator_LargeTrades(t *testing.T) {
	config := DefaultConfig()
	config.LargeEvery = 5
	config.LargeQuantity = 100
	gen := NewTradeGenerator(1, config)

	threshold := decimal.NewFromInt(95)
	large := 0
	for i := 0; i < 50; i++ {
		if gen.NextTrade().Quantity.GreaterThan(threshold) {
			large++
		}
	}

	if large != 10 {
		t.Errorf("expected 10 large trades, got %d", large)
	}
}

func TestTradeGenerator_NoLargeTrades(t *testing.T) {
	config := DefaultConfig()
	config.LargeEvery = 0
	gen := NewTradeGenerator(1, config)

	for i := 0; i < 200; i++ {
		if q := gen.NextTrade().Quantity; q.GreaterThan(decimal.NewFromInt(1)) {
			t.Fatalf("unexpected large quantity %s at index %d", q, i)
		}
	}
}

func TestTradeGenerator_Reproducible(t *testing.T) {
	a, err := NewTradeGenerator(7, DefaultConfig()).Frames(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := NewTradeGenerator(7, DefaultConfig()).Frames(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		if string(a[i]) != string(b[i]) {
			t.Fatalf("frame %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestTradeGenerator_FramesAreBinanceTrades(t *testing.T) {
	frames, err := NewTradeGenerator(3, DefaultConfig()).Frames(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, frame := range frames {
		if _, err := feed.ExtractPrice(frame); err != nil {
			t.Errorf("frame %d has no price: %v", i, err)
		}

		if _, err := feed.ExtractQuantity(frame); err != nil {
			t.Errorf("frame %d has no quantity: %v", i, err)
		}

		trade, err := feed.DecodeTrade(frame)
		if err != nil {
			t.Errorf("frame %d does not decode: %v", i, err)
		}

		if trade.TradeID != int64(i+1) {
			t.Errorf("expected trade id %d, got %d", i+1, trade.TradeID)
		}
	}
}
