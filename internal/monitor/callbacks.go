package monitor

import (
	"github.com/rxtech-lab/tradewatch/internal/series"
	"github.com/rxtech-lab/tradewatch/internal/types"
)

// OnPriceUpdateCallback is called for each drained frame that yielded a price.
// Returning an error stops Run.
type OnPriceUpdateCallback func(update series.Update) error

// OnFeedStatusChangeCallback is called when the feed connection status changes.
type OnFeedStatusChangeCallback func(status types.FeedStatus, err error)

// OnSessionStopCallback is called when Run returns (always called via defer).
type OnSessionStopCallback func(err error)

// Callbacks holds the callback functions for Run.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	// OnPriceUpdate is called for each price applied to the series.
	OnPriceUpdate *OnPriceUpdateCallback

	// OnFeedStatusChange is called when the feed connection status changes.
	OnFeedStatusChange *OnFeedStatusChangeCallback

	// OnSessionStop is called when Run returns.
	OnSessionStop *OnSessionStopCallback
}
