package opwait

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pmcalder/opwait/internal/transport"
)

const defaultPollInterval = 5 * time.Second

// Client issues poll requests for long-running operations.
//
// Client is created with [New] and functional options, and is safe for
// concurrent use: it holds no per-wait state, so independent operations
// may be waited on from independent goroutines sharing one Client. Each
// [Wait] call owns its handler and loop state.
//
// The typical lifecycle is:
//
//	client, err := opwait.New(opwait.WithInterval(5 * time.Second))
//	if err != nil {
//	    slog.Error("failed to create client", "error", err)
//	    os.Exit(1)
//	}
//	defer client.Close()
//
//	result, err := opwait.Wait(ctx, client, handler, 10*time.Minute)
type Client struct {
	interval  time.Duration
	transport *transport.Client
	logger    *slog.Logger
	onAttempt []func(Attempt)
}

// New creates a new [Client] with the given options.
//
// All options have sensible defaults:
//   - Poll interval: 5 seconds
//   - HTTP client: pooled transport with a 1MB response body limit
//   - Logger: slog.Default()
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		interval: defaultPollInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	var failOn func(int) bool
	if cfg.strictStatus {
		failOn = func(statusCode int) bool { return statusCode >= 400 }
	}

	return &Client{
		interval:  cfg.interval,
		transport: transport.NewClient(cfg.httpClient, failOn),
		logger:    logger,
		onAttempt: cfg.onAttempt,
	}, nil
}

// Interval returns the fixed delay between poll attempts.
func (c *Client) Interval() time.Duration {
	return c.interval
}

// Close releases idle connections held by the client's transport.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.transport.Close()
}

// observe delivers a completed attempt to registered callbacks and logs it.
func (c *Client) observe(att Attempt) {
	if att.Err != nil {
		c.logger.Warn("poll attempt failed",
			"wait_id", att.WaitID,
			"attempt", att.Number,
			"url", att.URL,
			"status", att.StatusCode,
			"latency_ms", att.Latency.Milliseconds(),
			"error", att.Err.Error(),
		)
	} else {
		c.logger.Debug("poll attempt",
			"wait_id", att.WaitID,
			"attempt", att.Number,
			"url", att.URL,
			"status", att.StatusCode,
			"latency_ms", att.Latency.Milliseconds(),
			"done", att.Done,
		)
	}

	for _, cb := range c.onAttempt {
		invokeCallbackSafe(cb, att, c.logger)
	}
}

// invokeCallbackSafe calls an attempt callback with panic recovery.
// Panics are logged with a correlation ID; they do not abort the wait.
func invokeCallbackSafe(cb func(Attempt), att Attempt, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			logger.Error("attempt callback panicked",
				"correlation_id", correlationID,
				"panic", r,
				"url", att.URL,
			)
		}
	}()
	cb(att)
}
