package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/shopspring/decimal"
)

// Binance trade stream field names.
const (
	PriceField    = "p"
	QuantityField = "q"
)

var jsonNull = []byte("null")

// ExtractPrice reads the trade price from a raw trade frame.
func ExtractPrice(frame []byte) (decimal.Decimal, error) {
	return ExtractDecimal(frame, PriceField)
}

// ExtractQuantity reads the trade quantity from a raw trade frame.
func ExtractQuantity(frame []byte) (decimal.Decimal, error) {
	return ExtractDecimal(frame, QuantityField)
}

// ExtractDecimal reads a numeric field from a JSON object frame.
// The value may be a JSON string ("65000.10") or a JSON number (65000.10).
// Keys are matched exactly, unlike encoding/json struct decoding.
func ExtractDecimal(frame []byte, field string) (decimal.Decimal, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return decimal.Zero, errors.NewFieldError(errors.ErrCodeFrameParseFailed, field, frame, err)
	}

	raw, ok := fields[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return decimal.Zero, errors.NewFieldError(errors.ErrCodeFieldMissing, field, frame, nil)
	}

	var value decimal.Decimal
	if err := value.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, errors.NewFieldError(errors.ErrCodeFieldNotNumeric, field, frame, err)
	}

	return value, nil
}

// DecodeTrade decodes a complete Binance trade event.
// It is stricter than ExtractPrice: price and quantity must be strings, as Binance sends them.
func DecodeTrade(frame []byte) (types.Trade, error) {
	var event binance.WsTradeEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		return types.Trade{}, errors.Wrap(errors.ErrCodeTradeDecodeFailed, "failed to decode trade event", err)
	}

	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		return types.Trade{}, errors.NewFieldError(errors.ErrCodeFieldNotNumeric, PriceField, frame, err)
	}

	quantity, err := decimal.NewFromString(event.Quantity)
	if err != nil {
		return types.Trade{}, errors.NewFieldError(errors.ErrCodeFieldNotNumeric, QuantityField, frame, err)
	}

	return types.Trade{
		Symbol:       event.Symbol,
		TradeID:      event.TradeID,
		Price:        price,
		Quantity:     quantity,
		TradeTime:    time.UnixMilli(event.TradeTime),
		IsBuyerMaker: event.IsBuyerMaker,
	}, nil
}

// EncodeTrade builds a Binance trade event frame. It is the inverse of DecodeTrade
// and is used by the mock feed.
func EncodeTrade(trade types.Trade, eventTime time.Time) ([]byte, error) {
	event := binance.WsTradeEvent{
		Event:        "trade",
		Time:         eventTime.UnixMilli(),
		Symbol:       trade.Symbol,
		TradeID:      trade.TradeID,
		Price:        trade.Price.String(),
		Quantity:     trade.Quantity.String(),
		TradeTime:    trade.TradeTime.UnixMilli(),
		IsBuyerMaker: trade.IsBuyerMaker,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTradeDecodeFailed, "failed to encode trade event "+strconv.FormatInt(trade.TradeID, 10), err)
	}

	return data, nil
}
