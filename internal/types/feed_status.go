package types

// FeedStatus is the connection state of the trade feed.
// Only FeedStatusConnected counts as connected; the rest are "not connected".
type FeedStatus string

const (
	// FeedStatusIdle means Connect has not been called yet.
	FeedStatusIdle FeedStatus = "idle"

	// FeedStatusConnected means the upgrade succeeded and frames are being read.
	FeedStatusConnected FeedStatus = "connected"

	// FeedStatusDisconnected means the connection failed or dropped. There is no reconnect.
	FeedStatusDisconnected FeedStatus = "disconnected"

	// FeedStatusClosed means the connection was released by teardown.
	FeedStatusClosed FeedStatus = "closed"
)

// IsConnected reports whether frames can still arrive.
func (s FeedStatus) IsConnected() bool {
	return s == FeedStatusConnected
}
