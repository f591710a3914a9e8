package opwait

import (
	"bytes"
	"io"
	"net/http"

	"github.com/pmcalder/opwait/internal/transport"
)

// Snapshot is an immutable, fully-buffered copy of an HTTP response.
//
// The live transport response body can only be read once and must be
// closed promptly, but handler logic needs to branch on the status and
// later read the body. The poller therefore buffers every response into a
// Snapshot before any handler code runs: the body is read exactly once
// from the wire and is re-readable any number of times afterwards via
// [Snapshot.BodyReader] or the Body field.
//
// A Snapshot is created per poll attempt and discarded after payload
// extraction. Handlers must not mutate it.
type Snapshot struct {
	// StatusCode is the numeric HTTP status code (e.g., 200, 404).
	StatusCode int

	// Status is the full status line text (e.g., "200 OK").
	Status string

	// Header contains the response headers.
	Header http.Header

	// Body contains the response body, limited to 1MB.
	Body []byte
}

// BodyReader returns a fresh reader over the buffered body.
//
// Each call returns an independent reader positioned at the start, so the
// body can be consumed repeatedly.
func (s *Snapshot) BodyReader() io.Reader {
	return bytes.NewReader(s.Body)
}

// IsSuccess reports whether the status code is in the 2xx class.
func (s *Snapshot) IsSuccess() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// IsClientError reports whether the status code is in the 4xx class.
func (s *Snapshot) IsClientError() bool {
	return s.StatusCode >= 400 && s.StatusCode < 500
}

// newSnapshot converts a buffered transport response into a Snapshot.
func newSnapshot(res *transport.Response) *Snapshot {
	return &Snapshot{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Body:       res.Body,
	}
}
