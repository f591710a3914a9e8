package opwait

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pmcalder/opwait/internal/transport"
)

// Wait polls a long-running operation until its handler reports done, then
// returns the handler's result.
//
// Wait performs one poll attempt immediately, then further attempts at the
// client's fixed interval, until one of:
//
//   - the handler reports done: the handler's Result is returned.
//   - the deadline (computed at entry as now + timeout) would be reached
//     before the next attempt: a *[TimeoutError] is returned.
//   - an attempt fails terminally (see [PollOnce]): that error is
//     returned.
//   - ctx is cancelled between attempts: ctx.Err() is returned.
//
// Wait blocks the calling goroutine for its full duration. It holds no
// state on the client, so independent operations may be waited on
// concurrently from separate goroutines, each with its own handler.
//
// Wait is generic because Go methods cannot introduce type parameters; P
// and R are fixed by the handler. A nil handler returns [ErrNilHandler].
func Wait[P, R any](ctx context.Context, c *Client, h Handler[P, R], timeout time.Duration) (R, error) {
	var zero R
	if h == nil {
		return zero, ErrNilHandler
	}
	if ctx == nil {
		ctx = context.Background()
	}

	waitID := uuid.NewString()
	deadline := time.Now().Add(timeout)

	c.logger.Debug("wait started",
		"wait_id", waitID,
		"url", h.Target(),
		"timeout", timeout.String(),
		"interval", c.interval.String(),
	)

	attempts := 0
	for {
		attempts++
		done, err := pollOnce(ctx, c, h, waitID, attempts)
		if err != nil {
			return zero, err
		}
		if done {
			c.logger.Debug("wait finished",
				"wait_id", waitID,
				"attempts", attempts,
			)
			return h.Result(), nil
		}

		// stop if the next attempt could not start before the deadline
		if !time.Now().Add(c.interval).Before(deadline) {
			return zero, &TimeoutError{Timeout: timeout, Attempts: attempts}
		}

		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// PollOnce performs a single poll attempt and reports whether the handler
// considers the operation done.
//
// An attempt proceeds as follows:
//
//  1. A GET is issued to the handler's Target and the response is
//     buffered into a [Snapshot] (the live body is read once and closed).
//  2. On a transport error, the handler's HandleTransportError decides the
//     outcome: a returned error fails the attempt, resolved=true lets the
//     loop continue, and (false, nil) fails with
//     [ErrUnresolvedTransportError].
//  3. Otherwise, if the handler reports the snapshot finished, the payload
//     is decoded (skipped for [NoPayload]) and passed to HandleResult; a
//     decode failure fails with *[ExtractionError]. If the snapshot is not
//     finished and its status is 4xx, the attempt fails with
//     *[ClientError]. Any other unfinished snapshot is left for the next
//     attempt.
//  4. The handler's Done decides the return value.
//
// Most callers should use [Wait]; PollOnce is exposed for callers that
// drive their own loop or want exactly one attempt.
func PollOnce[P, R any](ctx context.Context, c *Client, h Handler[P, R]) (bool, error) {
	if h == nil {
		return false, ErrNilHandler
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return pollOnce(ctx, c, h, uuid.NewString(), 1)
}

// pollOnce is the shared single-attempt implementation behind Wait and
// PollOnce.
func pollOnce[P, R any](ctx context.Context, c *Client, h Handler[P, R], waitID string, number int) (bool, error) {
	target := h.Target()

	var headers map[string]string
	if hp, ok := any(h).(HeaderProvider); ok {
		headers = hp.Headers()
	}

	start := time.Now()
	res, err := c.transport.Get(ctx, target, headers)
	att := Attempt{
		WaitID:    waitID,
		Number:    number,
		URL:       target,
		Latency:   time.Since(start),
		CheckedAt: time.Now(),
	}

	if err != nil {
		// a response arrived but its body could not be buffered; that is
		// a transport-layer defect, not a recoverable polling outcome
		if errors.Is(err, transport.ErrReadBody) {
			att.Err = err
			c.observe(att)
			return false, fmt.Errorf("polling %s: %w", target, err)
		}

		terr := newTransportError(target, err)
		att.StatusCode = terr.StatusCode
		att.Err = terr

		resolved, herr := h.HandleTransportError(terr)
		if herr != nil {
			c.observe(att)
			return false, herr
		}
		if !resolved {
			c.observe(att)
			return false, fmt.Errorf("handler %T: %w", h, ErrUnresolvedTransportError)
		}

		done := h.Done()
		att.Err = nil
		att.Done = done
		c.observe(att)
		return done, nil
	}

	snap := newSnapshot(res)
	att.StatusCode = snap.StatusCode

	switch {
	case h.Finished(snap):
		payload, derr := decodePayload[P](snap)
		if derr != nil {
			xerr := &ExtractionError{Err: derr}
			att.Err = xerr
			c.observe(att)
			return false, xerr
		}
		if rerr := h.HandleResult(payload); rerr != nil {
			att.Err = rerr
			c.observe(att)
			return false, rerr
		}
	case snap.IsClientError():
		cerr := &ClientError{StatusCode: snap.StatusCode}
		att.Err = cerr
		c.observe(att)
		return false, cerr
	}

	done := h.Done()
	att.Done = done
	c.observe(att)
	return done, nil
}

// decodePayload decodes the snapshot body into the handler's payload type.
// Decoding is skipped entirely when the payload type is [NoPayload].
func decodePayload[P any](snap *Snapshot) (P, error) {
	var payload P
	if _, ok := any(payload).(NoPayload); ok {
		return payload, nil
	}

	if err := json.NewDecoder(snap.BodyReader()).Decode(&payload); err != nil {
		var zero P
		return zero, err
	}
	return payload, nil
}

// newTransportError wraps a transport failure, carrying the status code
// when the failure was triggered by one (strict-status mode).
func newTransportError(url string, err error) *TransportError {
	terr := &TransportError{URL: url, Err: err}

	var serr *transport.StatusError
	if errors.As(err, &serr) {
		terr.StatusCode = serr.StatusCode
	}
	return terr
}
