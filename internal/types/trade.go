package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one executed trade decoded from the feed.
type Trade struct {
	Symbol    string          `json:"symbol" yaml:"symbol"`
	TradeID   int64           `json:"trade_id" yaml:"trade_id"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
	Quantity  decimal.Decimal `json:"quantity" yaml:"quantity"`
	TradeTime time.Time       `json:"trade_time" yaml:"trade_time"`
	// IsBuyerMaker is true when the buyer was the passive side.
	IsBuyerMaker bool `json:"is_buyer_maker" yaml:"is_buyer_maker"`
}

// PricePoint is one chart point. Index is the tick index, not wall-clock time.
type PricePoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
}
