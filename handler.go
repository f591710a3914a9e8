package opwait

import (
	"time"
)

// Handler drives the polling of one long-running operation.
//
// P is the payload type decoded from the finished response body (use
// [NoPayload] when the operation produces no body worth decoding) and R is
// the type of the final result returned by [Wait].
//
// A Handler distinguishes two notions of completion:
//
//   - finished: the server produced a terminal outcome (success or
//     terminal failure), reported by Finished.
//   - done: the client-side loop should stop, reported by Done.
//
// Usually the two coincide, but a handler may be finished without being
// done, for example when the terminal payload carries a pointer to a final
// resource: HandleResult updates Target and leaves Done false, and the
// loop polls once more at the new target.
//
// Handlers are stateful and owned by a single wait loop; they need no
// internal synchronization.
type Handler[P, R any] interface {
	// Target returns the URI to poll. The handler may change it between
	// polls, e.g. to follow a "next" link from an earlier payload.
	Target() string

	// Finished reports whether the captured response means the server
	// produced a terminal outcome. It sees the status and headers; the
	// body is buffered and readable but not yet decoded.
	Finished(snap *Snapshot) bool

	// Done reports whether the poll loop should stop. It is consulted at
	// the end of every attempt, after HandleResult or
	// HandleTransportError has run.
	Done() bool

	// HandleResult consumes the payload decoded from a finished
	// response. A non-nil error fails the wait (e.g. the payload reports
	// a terminal failure).
	HandleResult(payload P) error

	// HandleTransportError consumes an HTTP-layer error. Implementations
	// must either resolve the error (return resolved=true with a nil
	// error) so polling can continue, or return a non-nil error to fail
	// the wait. Returning (false, nil) is treated as a defect in the
	// handler and the poller fails with [ErrUnresolvedTransportError].
	HandleTransportError(terr *TransportError) (resolved bool, err error)

	// Result returns the terminal value. It is only meaningful once Done
	// reports true.
	Result() R
}

// NoPayload is a marker payload type for handlers whose operations produce
// no decodable body. When a handler's payload type is NoPayload, the
// poller skips body extraction entirely and passes the zero value to
// HandleResult.
type NoPayload struct{}

// HeaderProvider is an optional capability for handlers whose poll
// requests need custom HTTP headers (e.g. authentication). When a handler
// implements it, the returned headers are sent with every poll request.
type HeaderProvider interface {
	Headers() map[string]string
}

// Attempt describes one completed poll attempt. Attempts are delivered to
// callbacks registered with [WithAttemptCallback] and logged at debug
// level.
type Attempt struct {
	// WaitID correlates all attempts of a single [Wait] call.
	WaitID string

	// Number is the 1-based attempt counter within the wait.
	Number int

	// URL is the polling target the attempt was sent to.
	URL string

	// StatusCode is the HTTP status code received, or zero if the
	// request failed before a response arrived.
	StatusCode int

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// CheckedAt is the timestamp when the attempt completed.
	CheckedAt time.Time

	// Done reports whether the handler considered the operation done
	// after this attempt.
	Done bool

	// Err contains the error that ended the attempt, or nil.
	Err error
}
