package main

import (
	"time"

	"github.com/rxtech-lab/tradewatch/internal/types"
)

// drainTickMsg fires once per drain interval.
type drainTickMsg time.Time

// AlertMsg carries a raised volume alert to the screen.
type AlertMsg struct {
	Alert types.Alert
}

// FeedStatusMsg signals a feed connection status change.
type FeedStatusMsg struct {
	Status types.FeedStatus
	Err    error
}

// FeedStartedMsg signals that the feed connected.
type FeedStartedMsg struct{}

// FeedErrorMsg indicates the feed could not be started.
type FeedErrorMsg struct {
	Err error
}

// sessionClosedMsg signals that teardown finished.
type sessionClosedMsg struct {
	Err error
}
