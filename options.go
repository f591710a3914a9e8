package opwait

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	interval     time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	strictStatus bool
	onAttempt    []func(Attempt)
}

// Option is a function that configures a [Client] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithInterval], [WithHTTPClient], [WithLogger],
// [WithStrictStatus], [WithAttemptCallback].
type Option func(*clientConfig) error

// WithInterval sets the fixed delay between poll attempts.
//
// Defaults to 5 seconds if not specified. The interval is fixed for the
// lifetime of the client; there is no backoff.
//
// Example:
//
//	client, err := opwait.New(opwait.WithInterval(2 * time.Second))
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithHTTPClient sets a custom underlying [http.Client].
//
// Use this to supply transport-level configuration such as TLS settings or
// proxies. If not specified, a pooled client with conservative connection
// limits is used. Per-attempt timeouts should be applied via the context
// passed to [Wait] rather than the client's Timeout field.
//
// Returns an error if the client is nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the client.
//
// This allows consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	client, err := opwait.New(opwait.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStrictStatus makes the transport treat any status code of 400 or
// above as exceptional: instead of a response snapshot, the poll attempt
// produces a [TransportError], which is routed through the handler's
// HandleTransportError method.
//
// Without this option (the default), non-2xx responses are captured like
// any other and interpreted by the handler's Finished predicate, with 4xx
// responses failing the wait as [ClientError] when not finished.
//
// Use strict mode when handlers need to intercept error statuses, e.g. to
// tolerate transient 5xx responses from a flaky status endpoint.
func WithStrictStatus() Option {
	return func(cfg *clientConfig) error {
		cfg.strictStatus = true
		return nil
	}
}

// WithAttemptCallback registers a function invoked after every completed
// poll attempt.
//
// The callback receives an [Attempt] describing the outcome, including the
// wait correlation ID, attempt number, status code, and latency. Multiple
// callbacks may be registered; they execute in registration order.
//
// Callbacks are invoked synchronously from the wait loop between attempts,
// so they must be non-blocking; long-running work should be dispatched to
// a separate goroutine. Panics within callbacks are recovered and logged
// with a correlation ID; they do not abort the wait.
//
// Nil callbacks are silently ignored.
func WithAttemptCallback(cb func(Attempt)) Option {
	return func(cfg *clientConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.onAttempt = append(cfg.onAttempt, cb)
		return nil
	}
}
