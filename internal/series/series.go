package series

import (
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/shopspring/decimal"
)

// Placeholder is shown by both summaries before the first price arrives.
const Placeholder = "--"

var hundred = decimal.NewFromInt(100)

// Update describes one applied price.
type Update struct {
	Point         types.PricePoint
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
	// First is true for the first price of the session.
	First bool
}

// PriceText returns the current price summary, e.g. "Current Price: $67012.34".
func (u Update) PriceText() string {
	return FormatPrice(u.Price)
}

// ChangeText returns the change summary, e.g. "Change: 0.25%".
func (u Update) ChangeText() string {
	return FormatChange(u.ChangePercent)
}

// PriceSeries is the running price chart data.
// Points are indexed by tick, starting at 0, and are never trimmed.
type PriceSeries struct {
	mu       sync.RWMutex
	points   []types.PricePoint
	previous optional.Option[decimal.Decimal]
	last     optional.Option[Update]
}

// New creates an empty series.
func New() *PriceSeries {
	return &PriceSeries{
		mu:       sync.RWMutex{},
		points:   make([]types.PricePoint, 0),
		previous: optional.None[decimal.Decimal](),
		last:     optional.None[Update](),
	}
}

// Apply appends price as the next point and computes the percentage change
// against the previous price. The first price, or a previous price of zero,
// yields a change of 0.
func (s *PriceSeries) Apply(price decimal.Decimal) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	change := decimal.Zero
	first := s.previous.IsNone()
	if !first {
		previous := s.previous.Unwrap()
		if !previous.IsZero() {
			change = price.Sub(previous).Div(previous).Mul(hundred)
		}
	}

	value, _ := price.Float64()
	point := types.PricePoint{Index: len(s.points), Price: value}
	s.points = append(s.points, point)
	s.previous = optional.Some(price)

	update := Update{
		Point:         point,
		Price:         price,
		ChangePercent: change,
		First:         first,
	}
	s.last = optional.Some(update)

	return update
}

// Len returns the number of points.
func (s *PriceSeries) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.points)
}

// Window returns a copy of the latest n points. n <= 0 returns every point.
func (s *PriceSeries) Window(n int) []types.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && len(s.points) > n {
		start = len(s.points) - n
	}

	points := make([]types.PricePoint, len(s.points)-start)
	copy(points, s.points[start:])

	return points
}

// Last returns the most recent update, if any.
func (s *PriceSeries) Last() optional.Option[Update] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last
}

// PriceText returns the current price summary, or a placeholder before the first price.
func (s *PriceSeries) PriceText() string {
	last := s.Last()
	if last.IsNone() {
		return priceLabel + Placeholder
	}

	return last.Unwrap().PriceText()
}

// ChangeText returns the change summary, or a placeholder before the first price.
func (s *PriceSeries) ChangeText() string {
	last := s.Last()
	if last.IsNone() {
		return changeLabel + Placeholder
	}

	return last.Unwrap().ChangeText()
}
