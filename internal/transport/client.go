package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion during long polls
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// ErrReadBody marks a failure while buffering a response body.
//
// A response arrived but its body could not be fully read. This is a
// defect of the transport layer rather than a polling outcome, so callers
// treat it as terminal instead of routing it through handler error
// handling. Test with errors.Is.
var ErrReadBody = errors.New("unable to read response body")

// Response is a fully-buffered HTTP response.
//
// The live response body is read exactly once (limited to 1MB) and closed
// before Get returns; Response carries only owned data with no lifecycle
// obligations.
type Response struct {
	// StatusCode is the numeric HTTP status code (e.g., 200, 404).
	StatusCode int

	// Status is the full status line text (e.g., "200 OK").
	Status string

	// Header contains the response headers.
	Header http.Header

	// Body contains the response body, limited to 1MB.
	Body []byte
}

// StatusError is returned by [Client.Get] in place of a [Response] when
// the client's FailOn predicate matches the response status.
//
// It carries the buffered body so callers can still inspect the server's
// error document.
type StatusError struct {
	// StatusCode is the numeric HTTP status code that triggered the error.
	StatusCode int

	// Status is the full status line text.
	Status string

	// Body contains the buffered response body.
	Body []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %s", e.Status)
}

// Client is an HTTP client wrapper for polling operation status URIs.
//
// Client buffers every response body before returning, limited to 1MB.
// Timeouts are applied per-request via the context parameter in
// [Client.Get], not as a global client timeout.
type Client struct {
	httpClient *http.Client

	// failOn, when non-nil, makes Get return a *StatusError instead of a
	// Response for matching status codes.
	failOn func(statusCode int) bool
}

// NewClient creates a new transport [Client].
//
// If httpClient is nil, a client with conservative connection pooling
// limits is used:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
//
// failOn may be nil, in which case every status code yields a Response.
func NewClient(httpClient *http.Client, failOn func(statusCode int) bool) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			// no default timeout - callers apply per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		}
	}
	return &Client{
		httpClient: httpClient,
		failOn:     failOn,
	}
}

// Get issues a GET request and returns the fully-buffered response.
//
// The live response body is read exactly once and closed before Get
// returns, regardless of outcome. Error cases:
//
//   - request construction or network failure: wrapped error
//   - body read failure: error wrapping [ErrReadBody]
//   - status matched by the FailOn predicate: *[StatusError]
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadBody, err)
	}

	if c.failOn != nil && c.failOn(resp.StatusCode) {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
