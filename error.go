package webmark

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Application error codes.
const (
	ECONFLICT    = "conflict"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application error. Errors carry a machine-readable
// code, a human-readable message, and a short correlation ID for tracing a
// failure across log lines and progress events.
type Error struct {
	// Code is one of the application error code constants.
	Code string

	// Message is a human-readable description of the error.
	Message string

	// ID is a short correlation identifier, generated on construction.
	ID string

	// RetryAfter is a server-specified wait hint (e.g. from a 429
	// Retry-After header). Zero means no hint.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("webmark error: code=%s message=%s id=%s", e.Code, e.Message, e.ID)
}

// NewCorrelationID returns an 8-character correlation identifier.
func NewCorrelationID() string {
	return uuid.NewString()[:8]
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		ID:      NewCorrelationID(),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns an empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors report a generic message so internal details
// are never surfaced to users.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorID unwraps an application error and returns its correlation ID,
// or an empty string for non-application errors.
func ErrorID(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.ID
	}
	return ""
}

// IsRetryable reports whether the error represents a transient failure
// worth retrying (connection errors, timeouts, 5xx, rate limits).
// Validation and fatal provider errors are never retryable.
func IsRetryable(err error) bool {
	return ErrorCode(err) == EUNAVAILABLE
}

// RetryAfter returns the server-specified wait hint attached to the error,
// or zero if none is present.
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
