package alerts

import (
	stderrors "errors"

	"github.com/gen2brain/beeep"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"go.uber.org/zap"
)

// Notifier delivers an alert to the user.
type Notifier interface {
	Notify(alert types.Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(alert types.Alert) error

// Notify calls f(alert).
func (f NotifierFunc) Notify(alert types.Alert) error {
	return f(alert)
}

// ImportanceHigh marks a channel whose alerts are audible.
const ImportanceHigh = "high"

// Channel describes where desktop alerts are posted.
type Channel struct {
	ID         string
	Name       string
	Importance string
}

// DesktopNotifier posts alerts as desktop notifications. A high-importance
// channel plays the system alert sound.
type DesktopNotifier struct {
	channel Channel
	log     *logger.Logger
	send    func(title, message string) error
}

// NewDesktopNotifier creates the notifier for channel. Create it once and reuse it.
func NewDesktopNotifier(channel Channel, log *logger.Logger) *DesktopNotifier {
	send := func(title, message string) error {
		return beeep.Notify(title, message, "")
	}

	if channel.Importance == ImportanceHigh {
		send = func(title, message string) error {
			return beeep.Alert(title, message, "")
		}
	}

	log.Debug("desktop notification channel registered",
		zap.String("channel_id", channel.ID),
		zap.String("channel_name", channel.Name),
		zap.String("importance", channel.Importance),
	)

	return &DesktopNotifier{
		channel: channel,
		log:     log,
		send:    send,
	}
}

// Channel returns the channel the notifier posts to.
func (n *DesktopNotifier) Channel() Channel {
	return n.channel
}

// Notify implements Notifier.
func (n *DesktopNotifier) Notify(alert types.Alert) error {
	if err := n.send(alert.Title, alert.Message); err != nil {
		return errors.Wrapf(errors.ErrCodeNotificationFailed, err, "failed to post notification to channel %s", n.channel.ID)
	}

	return nil
}

// LogNotifier writes alerts to the log.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier that logs alerts at info level.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(alert types.Alert) error {
	n.log.Info(alert.Title,
		zap.String("alert_id", alert.ID),
		zap.String("message", alert.Message),
		zap.String("symbol", alert.Symbol),
		zap.Int64("trade_id", alert.TradeID),
		zap.String("quantity", alert.Quantity.String()),
		zap.String("threshold", alert.Threshold.String()),
	)

	return nil
}

// MultiNotifier fans an alert out to every notifier. Every notifier is called
// even when an earlier one fails.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(alert types.Alert) error {
	var errs []error

	for _, notifier := range m {
		if notifier == nil {
			continue
		}

		if err := notifier.Notify(alert); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Wrap(errors.ErrCodeNotificationFailed, "one or more notifiers failed", stderrors.Join(errs...))
}
