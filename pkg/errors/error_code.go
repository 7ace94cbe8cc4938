package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeVersionMismatch      ErrorCode = 106

	// Feed connection errors (200-299)
	ErrCodeFeedConnectFailed ErrorCode = 200
	ErrCodeFeedClosed        ErrorCode = 201
	ErrCodeFeedReadFailed    ErrorCode = 202
	ErrCodeFeedAlreadyOpen   ErrorCode = 203

	// Frame errors (300-399)
	ErrCodeFrameParseFailed  ErrorCode = 300
	ErrCodeFieldMissing      ErrorCode = 301
	ErrCodeFieldNotNumeric   ErrorCode = 302
	ErrCodeTradeDecodeFailed ErrorCode = 303

	// Notification errors (500-599)
	ErrCodeNotificationFailed ErrorCode = 500

	// Session errors (600-699)
	ErrCodeSessionClosed    ErrorCode = 600
	ErrCodeStatsWriteFailed ErrorCode = 601
	ErrCodeStatsReadFailed  ErrorCode = 602

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
