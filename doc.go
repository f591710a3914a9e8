// Package opwait provides a small client for waiting on asynchronous REST
// operations.
//
// Many REST APIs model long-running work as an operation resource: the
// initial request returns a status URI, and the client polls that URI until
// the server reports a terminal outcome. opwait drives that polling loop:
// it issues a GET against the status URI at a fixed interval, hands each
// response to a caller-supplied [Handler], and returns the handler's typed
// result once the handler reports the operation is done.
//
// # Quick Start
//
// For the common case of a JSON status document, use [Operation]:
//
//	client, _ := opwait.New(opwait.WithInterval(5 * time.Second))
//	defer client.Close()
//
//	op, _ := opwait.NewOperation("https://api.example.com/operations/42",
//	    opwait.FinishedWhen(opwait.JSONFieldEquals("status", "OK", "ERROR")),
//	    opwait.FailWhen("status", "ERROR"),
//	)
//
//	result, err := op.Wait(ctx, client, 10*time.Minute)
//
// # Handlers
//
// Operation-specific polling logic is expressed as a [Handler]: it names
// the polling target, decides whether a captured response means the server
// finished, consumes the decoded payload, and produces the final result.
// The handler distinguishes "finished" (the server produced a terminal
// payload) from "done" (the loop should stop); a handler may be finished
// but not yet done, for example when the terminal payload points at a
// final resource that must be fetched with one more poll.
//
// Custom handlers implement the interface directly; [Operation] covers
// JSON status documents, optionally following a link to the final resource.
//
// # Response Snapshots
//
// The live HTTP response body can only be read once and must be closed
// promptly. opwait buffers each response into an immutable [Snapshot]
// (status, headers, body bytes) before any handler logic runs, so handlers
// can branch on the status and re-read the body freely without holding any
// transport resource.
//
// # Errors
//
// Every failure is terminal for the current wait: a 4xx status before the
// handler reports finished ([ClientError]), a payload decode failure
// ([ExtractionError]), an exhausted deadline ([TimeoutError]), or a
// transport error the handler did not resolve. Only "not finished yet" is
// retried, at the fixed interval. See [Wait] for details.
//
// # Architecture
//
// The library consists of this package plus:
//
//   - internal/transport: HTTP client wrapper with response buffering
//   - config: YAML configuration for the opwait CLI
//   - cmd/opwait: standalone binary for waiting on operations from scripts
//
// The internal package is not part of the public API and may change
// without notice.
package opwait
