package usecase

import "fmt"

type ErrorCode string

const (
	ErrorConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrorValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrorTransport     ErrorCode = "TRANSPORT_ERROR"
)

// Error is returned by every service operation. Message is safe to show to
// the client. For ErrorUpstream, StatusCode, Body and ContentType hold the
// upstream response as received.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error

	StatusCode  int
	Body        string
	ContentType string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}
