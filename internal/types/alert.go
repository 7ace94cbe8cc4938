package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// VolumeAlertTitle is the notification title for a large trade.
	VolumeAlertTitle = "Large trade!"
)

// Alert is raised once per frame whose quantity exceeds the threshold.
type Alert struct {
	// ID is a UUIDv7; its leading 48 bits are the wall-clock milliseconds at creation.
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Symbol    string          `json:"symbol,omitempty"`
	TradeID   int64           `json:"trade_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Threshold decimal.Decimal `json:"threshold"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewVolumeAlert creates an alert for a trade of the given quantity.
func NewVolumeAlert(quantity, threshold decimal.Decimal) Alert {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to a v4.
		id = uuid.New()
	}

	createdAt := time.Now()
	if id.Version() == 7 {
		sec, nsec := id.Time().UnixTime()
		createdAt = time.Unix(sec, nsec)
	}

	return Alert{
		ID:        id.String(),
		Title:     VolumeAlertTitle,
		Message:   fmt.Sprintf("Trade volume: %s", quantity.String()),
		Symbol:    "",
		TradeID:   0,
		Quantity:  quantity,
		Threshold: threshold,
		CreatedAt: createdAt,
	}
}

// WithTrade copies symbol and trade id from the decoded trade.
func (a Alert) WithTrade(trade Trade) Alert {
	a.Symbol = trade.Symbol
	a.TradeID = trade.TradeID

	return a
}
