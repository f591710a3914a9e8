package opwait

import (
	"errors"
	"fmt"
	"time"
)

// ErrNilHandler is returned when a nil handler is passed to [Wait] or
// [PollOnce]. This is a caller precondition violation and is never retried.
var ErrNilHandler = errors.New("handler must not be nil")

// ErrUnresolvedTransportError is returned when a handler's
// HandleTransportError neither resolves a transport error nor returns an
// error of its own. It signals a defect in the handler implementation, not
// a transient condition; the returned error names the offending handler
// type and wraps this sentinel. Test with errors.Is.
var ErrUnresolvedTransportError = errors.New("handler did not resolve transport error")

// TransportError is an HTTP-layer error raised while issuing a poll
// request: a network failure, an invalid polling target, or (in
// strict-status mode, see [WithStrictStatus]) a status code the transport
// treats as exceptional.
//
// TransportError is the only error kind a [Handler] can recover from, via
// its HandleTransportError method. Unresolved, it fails the wait.
type TransportError struct {
	// URL is the polling target the request was sent to.
	URL string

	// StatusCode is the HTTP status code that triggered the error, or
	// zero if the failure occurred before a response was received.
	StatusCode int

	// Err is the underlying transport failure.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("polling %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientError is returned when a poll attempt receives a 4xx status before
// the handler reports the operation finished. Client errors during polling
// are never retried.
type ClientError struct {
	// StatusCode is the numeric HTTP status code (400-499).
	StatusCode int
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return fmt.Sprintf("polling returned client error HTTP status %d", e.StatusCode)
}

// ExtractionError is returned when the payload cannot be decoded from a
// finished response's body. It is distinct from [TransportError]: the
// response arrived intact, but its body did not match the handler's
// payload type.
type ExtractionError struct {
	// Err is the underlying decode failure.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract poll payload: %v", e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned by [Wait] when the operation did not report
// done within the caller-supplied timeout.
type TimeoutError struct {
	// Timeout is the caller-supplied overall timeout.
	Timeout time.Duration

	// Attempts is the number of poll attempts performed before giving up.
	Attempts int
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("polling timed out after %s (%d attempts)", e.Timeout, e.Attempts)
}
