// Package transport wraps net/http for the opwait polling loop.
//
// The wrapper issues status GETs and fully buffers each response before
// returning, so the caller never holds a live response body. The main
// components are:
//
//   - [Client]: HTTP client with connection pooling and body size limits
//   - [Response]: fully-buffered response (status, headers, body bytes)
//   - [StatusError]: returned instead of a Response in strict-status mode
//
// Users of the opwait library should not need to interact with this
// package directly.
package transport
