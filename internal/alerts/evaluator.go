package alerts

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tradewatch/internal/feed"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Evaluator raises an alert for every frame whose quantity is strictly
// greater than the threshold. There is no de-duplication or rate limit.
type Evaluator struct {
	threshold decimal.Decimal
	notifier  Notifier
	log       *logger.Logger
}

// NewEvaluator creates an evaluator. A nil notifier only logs.
func NewEvaluator(threshold decimal.Decimal, notifier Notifier, log *logger.Logger) *Evaluator {
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}

	return &Evaluator{
		threshold: threshold,
		notifier:  notifier,
		log:       log,
	}
}

// Threshold returns the configured threshold.
func (e *Evaluator) Threshold() decimal.Decimal {
	return e.threshold
}

// Inspect checks one raw frame. The returned error reports an unreadable
// quantity; it has already been logged and is only returned for accounting.
// Notifier failures are logged and never returned.
func (e *Evaluator) Inspect(frame []byte) (optional.Option[types.Alert], error) {
	quantity, err := feed.ExtractQuantity(frame)
	if err != nil {
		e.log.Warn("failed to read trade quantity", zap.Error(err), zap.ByteString("frame", frame))

		return optional.None[types.Alert](), err
	}

	if !quantity.GreaterThan(e.threshold) {
		return optional.None[types.Alert](), nil
	}

	alert := types.NewVolumeAlert(quantity, e.threshold)
	if trade, decodeErr := feed.DecodeTrade(frame); decodeErr == nil {
		alert = alert.WithTrade(trade)
	}

	if err := e.notifier.Notify(alert); err != nil {
		e.log.Error("failed to deliver alert", zap.String("alert_id", alert.ID), zap.Error(err))
	}

	return optional.Some(alert), nil
}
