package lightnet

import (
	"errors"
	"fmt"
)

// Error kinds form a closed taxonomy; every failure surfaced by the client
// carries exactly one of these in Error.Type.
const (
	ErrorTypeInvalidURL      = "InvalidURL"
	ErrorTypeInvalidResponse = "InvalidResponse"
	ErrorTypeEncoding        = "Encoding"
	ErrorTypeDecoding        = "Decoding"
	ErrorTypeServer          = "Server"
	ErrorTypeUnauthorized    = "Unauthorized"
	ErrorTypeNoData          = "NoData"
	ErrorTypeTimeout         = "Timeout"
	ErrorTypeCancelled       = "Cancelled"
	ErrorTypeUnderlying      = "Underlying"
)

// Error is the single error type returned by the client. Type identifies the
// failure kind; StatusCode and Body are populated for Server responses and
// Cause for wrapped lower-level failures.
type Error struct {
	Type       string
	Message    string
	StatusCode int
	Body       []byte
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("lightnet: %s: %s", e.Type, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches errors of the same kind. Underlying errors carry no comparable
// data, so two distinct Underlying values never match each other.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Type == ErrorTypeUnderlying || t.Type == ErrorTypeUnderlying {
		return e == t
	}
	return e.Type == t.Type
}

// IsAuthenticationError reports whether err is an Unauthorized failure.
func IsAuthenticationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeUnauthorized
}

// IsServerError reports whether err is a Server failure with a 5xx status.
func IsServerError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == ErrorTypeServer && e.StatusCode >= 500 && e.StatusCode < 600
}

// StatusCode returns the HTTP status associated with err: 401 for
// Unauthorized, the stored code for Server, and false for everything else.
func StatusCode(err error) (int, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	switch e.Type {
	case ErrorTypeUnauthorized:
		return 401, true
	case ErrorTypeServer:
		return e.StatusCode, true
	default:
		return 0, false
	}
}

func newError(kind, message string) *Error {
	return &Error{Type: kind, Message: message}
}

func wrapUnderlying(cause error) *Error {
	return &Error{Type: ErrorTypeUnderlying, Message: "request failed", Cause: cause}
}
