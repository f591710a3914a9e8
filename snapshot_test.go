package opwait

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestSnapshot_BodyRereadable(t *testing.T) {
	body := []byte(`{"status":"OK","id":"x"}`)
	snap := &Snapshot{
		StatusCode: 200,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	}

	for i := 0; i < 3; i++ {
		got, err := io.ReadAll(snap.BodyReader())
		if err != nil {
			t.Fatalf("read %d: error = %v", i, err)
		}
		if !bytes.Equal(got, body) {
			t.Errorf("read %d: body = %q, want %q", i, got, body)
		}
	}
}

func TestSnapshot_IndependentReaders(t *testing.T) {
	snap := &Snapshot{Body: []byte("abcdef")}

	r1 := snap.BodyReader()
	r2 := snap.BodyReader()

	buf := make([]byte, 3)
	if _, err := io.ReadFull(r1, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}

	// draining r1 halfway must not move r2
	got, err := io.ReadAll(r2)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "abcdef" {
		t.Errorf("second reader body = %q, want %q", got, "abcdef")
	}
}

func TestSnapshot_StatusClassHelpers(t *testing.T) {
	tests := []struct {
		statusCode      string
		code            int
		wantSuccess     bool
		wantClientError bool
	}{
		{"200", 200, true, false},
		{"204", 204, true, false},
		{"299", 299, true, false},
		{"301", 301, false, false},
		{"400", 400, false, true},
		{"404", 404, false, true},
		{"499", 499, false, true},
		{"500", 500, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.statusCode, func(t *testing.T) {
			snap := &Snapshot{StatusCode: tt.code}
			if got := snap.IsSuccess(); got != tt.wantSuccess {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.wantSuccess)
			}
			if got := snap.IsClientError(); got != tt.wantClientError {
				t.Errorf("IsClientError() = %v, want %v", got, tt.wantClientError)
			}
		})
	}
}
