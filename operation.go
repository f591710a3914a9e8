package opwait

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Operation is a ready-made [Handler] for the common case of polling a
// JSON status document.
//
// An Operation polls its target until a finish predicate matches (by
// default [StatusSuccess]), then keeps the raw JSON payload as its result.
// Two optional behaviors cover most operation-style APIs:
//
//   - [FailWhen] inspects the finished payload and turns a matching field
//     value into a terminal error (e.g. status=ERROR).
//   - [FollowLink] reads a next-URI out of the finished payload; the
//     Operation updates its target and polls once more instead of
//     stopping, so the final result comes from the linked resource. This
//     is the "finished but not yet done" case.
//
// An Operation is stateful and must not be reused across waits.
type Operation struct {
	target   string
	finished Predicate
	headers  map[string]string

	// failure detection over the finished payload
	failPath   string
	failValues []string

	// link-following
	follow string

	// transient transport error tolerance
	tolerate  int
	tolerated int

	done   bool
	result json.RawMessage
}

// OperationOption is a function that configures an [Operation] during
// construction. Options return an error if validation fails.
//
// Built-in options: [FinishedWhen], [FailWhen], [FollowLink],
// [WithRequestHeaders], [TolerateTransportErrors].
type OperationOption func(*Operation) error

// NewOperation creates an [Operation] polling the given status URI.
//
// The rawURL must be a valid URL with a scheme (http:// or https://).
// Options are applied in order. Without options, the operation finishes on
// the first 2xx response and its result is that response's JSON body.
//
// Example:
//
//	op, err := opwait.NewOperation("https://api.example.com/operations/42",
//	    opwait.FinishedWhen(opwait.JSONFieldEquals("status", "OK", "ERROR")),
//	    opwait.FailWhen("status", "ERROR"),
//	    opwait.WithRequestHeaders("Authorization", "Bearer token123"),
//	)
func NewOperation(rawURL string, opts ...OperationOption) (*Operation, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme == "" {
		return nil, errors.New("URL must have a scheme (http:// or https://)")
	}

	op := &Operation{
		target:   rawURL,
		finished: StatusSuccess,
	}

	for _, opt := range opts {
		if err := opt(op); err != nil {
			return nil, err
		}
	}

	return op, nil
}

// FinishedWhen sets the [Predicate] deciding when a captured response
// means the operation finished. Defaults to [StatusSuccess].
//
// Returns an error if the predicate is nil.
func FinishedWhen(p Predicate) OperationOption {
	return func(op *Operation) error {
		if p == nil {
			return errors.New("finished predicate cannot be nil")
		}
		op.finished = p
		return nil
	}
}

// FailWhen makes the operation fail when the finished payload's field at
// path (dot notation) equals any of the given values, case-insensitively.
//
// The comparison runs after the finish predicate matched, so a finished
// payload reporting e.g. status=ERROR turns into a terminal error carrying
// the offending value instead of a successful result.
//
// Example:
//
//	opwait.FailWhen("task.state", "ERROR", "CANCELLED")
//
// Returns an error if the path is empty or no values are given.
func FailWhen(path string, values ...string) OperationOption {
	return func(op *Operation) error {
		if path == "" {
			return errors.New("failure path cannot be empty")
		}
		if len(values) == 0 {
			return errors.New("FailWhen requires at least one value")
		}
		op.failPath = path
		op.failValues = values
		return nil
	}
}

// FollowLink makes the operation follow a next-URI found in the finished
// payload at path (dot notation), e.g. "links.result".
//
// When the finished payload carries a link at that path, the operation
// updates its polling target to the link and stays not-done, so the next
// attempt fetches the linked resource; the final result then comes from a
// payload without the link (or with the link pointing at the current
// target, which stops further following).
//
// Returns an error if the path is empty.
func FollowLink(path string) OperationOption {
	return func(op *Operation) error {
		if path == "" {
			return errors.New("follow path cannot be empty")
		}
		op.follow = path
		return nil
	}
}

// WithRequestHeaders adds custom HTTP headers to every poll request of
// this operation, e.g. for authentication.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	opwait.WithRequestHeaders("Authorization", "Bearer token123")
//
// Returns an error if an odd number of arguments is provided.
func WithRequestHeaders(keyValues ...string) OperationOption {
	return func(op *Operation) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithRequestHeaders requires an even number of arguments (key-value pairs)")
		}
		if op.headers == nil {
			op.headers = make(map[string]string, len(keyValues)/2)
		}
		for i := 0; i < len(keyValues); i += 2 {
			op.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// TolerateTransportErrors lets the operation resolve up to n transport
// errors per wait, continuing to poll instead of failing. The n+1-th
// transport error fails the wait. Useful with [WithStrictStatus] against
// status endpoints that answer the occasional 5xx.
//
// Returns an error if n is negative.
func TolerateTransportErrors(n int) OperationOption {
	return func(op *Operation) error {
		if n < 0 {
			return errors.New("tolerated transport error count cannot be negative")
		}
		op.tolerate = n
		return nil
	}
}

// Target returns the current polling URI. It changes when [FollowLink] is
// configured and a finished payload carried a link.
func (op *Operation) Target() string {
	return op.target
}

// Finished reports whether the snapshot matches the finish predicate.
func (op *Operation) Finished(snap *Snapshot) bool {
	return op.finished(snap)
}

// Done reports whether the wait loop should stop.
func (op *Operation) Done() bool {
	return op.done
}

// HandleResult consumes a finished payload: it applies the [FailWhen]
// check, follows a [FollowLink] target if present, and otherwise records
// the payload as the final result.
func (op *Operation) HandleResult(payload json.RawMessage) error {
	if op.failPath != "" {
		if got, ok := lookupJSONPath(payload, op.failPath); ok {
			for _, want := range op.failValues {
				if strings.EqualFold(got, want) {
					return fmt.Errorf("operation failed: %s is %q", op.failPath, got)
				}
			}
		}
	}

	if op.follow != "" {
		if next, ok := lookupJSONPath(payload, op.follow); ok && next != op.target {
			// finished but not done: re-poll at the linked resource
			op.target = next
			return nil
		}
	}

	op.result = append(json.RawMessage(nil), payload...)
	op.done = true
	return nil
}

// HandleTransportError resolves up to the tolerated number of transport
// errors (see [TolerateTransportErrors]); any further error fails the
// wait.
func (op *Operation) HandleTransportError(terr *TransportError) (bool, error) {
	if op.tolerated < op.tolerate {
		op.tolerated++
		return true, nil
	}
	return false, terr
}

// Result returns the final payload. Only meaningful once Done reports
// true.
func (op *Operation) Result() json.RawMessage {
	return op.result
}

// Headers implements [HeaderProvider] for headers configured with
// [WithRequestHeaders].
func (op *Operation) Headers() map[string]string {
	return op.headers
}

// Wait polls the operation through the given client until done. It is a
// convenience wrapper around the generic [Wait] with the Operation's
// payload and result types fixed to json.RawMessage.
func (op *Operation) Wait(ctx context.Context, c *Client, timeout time.Duration) (json.RawMessage, error) {
	return Wait[json.RawMessage, json.RawMessage](ctx, c, op, timeout)
}
