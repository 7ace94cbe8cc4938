// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid configuration and versions
//   - Feed errors (200-299): WebSocket connection and read failures
//   - Frame errors (300-399): Inbound frame parsing and field extraction
//   - Notification errors (500-599): Alert delivery failures
//   - Session errors (600-699): Session lifecycle and stats output
//   - Callback errors (800-899): Callback execution failures
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "threshold must be positive")
//	err := errors.Wrapf(errors.ErrCodeFeedConnectFailed, cause, "failed to dial %s", url)
//
//	if errors.HasCode(err, errors.ErrCodeFieldMissing) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error or *FieldError.
// Returns ErrCodeUnknown otherwise.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// FieldError reports a frame field that could not be extracted.
// Frame holds the raw frame, cut to maxFrameExcerpt bytes.
type FieldError struct {
	Code  ErrorCode
	Field string
	Frame string
	Cause error
}

const maxFrameExcerpt = 256

// NewFieldError creates a FieldError for the given field of frame.
func NewFieldError(code ErrorCode, field string, frame []byte, cause error) *FieldError {
	excerpt := string(frame)
	if len(excerpt) > maxFrameExcerpt {
		excerpt = excerpt[:maxFrameExcerpt] + "..."
	}

	return &FieldError{
		Code:  code,
		Field: field,
		Frame: excerpt,
		Cause: cause,
	}
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	switch e.Code {
	case ErrCodeFieldMissing:
		return fmt.Sprintf("[%d] field %q missing from frame", e.Code, e.Field)
	case ErrCodeFieldNotNumeric:
		return fmt.Sprintf("[%d] field %q is not numeric: %v", e.Code, e.Field, e.Cause)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("[%d] cannot read field %q: %v", e.Code, e.Field, e.Cause)
		}

		return fmt.Sprintf("[%d] cannot read field %q", e.Code, e.Field)
	}
}

// Unwrap returns the underlying error cause.
func (e *FieldError) Unwrap() error {
	return e.Cause
}

// IsFieldError checks if an error is a FieldError.
// It uses errors.As to check the error chain.
func IsFieldError(err error) bool {
	var fieldErr *FieldError

	return errors.As(err, &fieldErr)
}
