package opwait

import (
	"net/http"
	"testing"
)

func TestStatusSuccess(t *testing.T) {
	tests := []struct {
		name string
		code int
		want bool
	}{
		{"200 OK", 200, true},
		{"201 Created", 201, true},
		{"202 Accepted", 202, true},
		{"299 edge case", 299, true},
		{"301 Redirect", 301, false},
		{"404 Not Found", 404, false},
		{"500 Internal Server Error", 500, false},
		{"0 no response", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusSuccess(&Snapshot{StatusCode: tt.code})
			if got != tt.want {
				t.Errorf("StatusSuccess(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStatusIs(t *testing.T) {
	pred := StatusIs(200, 303)

	tests := []struct {
		name string
		code int
		want bool
	}{
		{"first listed code", 200, true},
		{"second listed code", 303, true},
		{"unlisted 2xx", 202, false},
		{"unlisted 4xx", 404, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pred(&Snapshot{StatusCode: tt.code})
			if got != tt.want {
				t.Errorf("StatusIs(200, 303)(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestHeaderPresent(t *testing.T) {
	pred := HeaderPresent("Location")

	withLocation := &Snapshot{Header: http.Header{"Location": []string{"/result/1"}}}
	if !pred(withLocation) {
		t.Error("HeaderPresent(Location) = false with Location set, want true")
	}

	withoutLocation := &Snapshot{Header: http.Header{}}
	if pred(withoutLocation) {
		t.Error("HeaderPresent(Location) = true without Location, want false")
	}

	emptyLocation := &Snapshot{Header: http.Header{"Location": []string{""}}}
	if pred(emptyLocation) {
		t.Error("HeaderPresent(Location) = true with empty Location, want false")
	}
}

func TestJSONFieldEquals(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		values []string
		body   string
		want   bool
	}{
		{"simple match", "status", []string{"OK"}, `{"status": "OK"}`, true},
		{"case insensitive", "status", []string{"ok"}, `{"status": "OK"}`, true},
		{"second value matches", "status", []string{"OK", "ERROR"}, `{"status": "ERROR"}`, true},
		{"no match", "status", []string{"OK"}, `{"status": "RUNNING"}`, false},
		{"nested path", "task.state", []string{"DONE"}, `{"task": {"state": "DONE"}}`, true},
		{"missing field", "status", []string{"OK"}, `{"state": "OK"}`, false},
		{"path through non-object", "status.value", []string{"OK"}, `{"status": "OK"}`, false},
		{"not json", "status", []string{"OK"}, `plain text`, false},
		{"boolean true", "done", []string{"true"}, `{"done": true}`, true},
		{"numeric one as true", "done", []string{"true"}, `{"done": 1}`, true},
		{"other number", "progress", []string{"100"}, `{"progress": 100}`, true},
		{"empty body", "status", []string{"OK"}, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := JSONFieldEquals(tt.path, tt.values...)
			got := pred(&Snapshot{StatusCode: 200, Body: []byte(tt.body)})
			if got != tt.want {
				t.Errorf("JSONFieldEquals(%q, %v)(%q) = %v, want %v",
					tt.path, tt.values, tt.body, got, tt.want)
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	snap := &Snapshot{StatusCode: 200, Body: []byte(`{"status": "OK"}`)}

	both := AllOf(StatusIs(200), JSONFieldEquals("status", "OK"))
	if !both(snap) {
		t.Error("AllOf with both matching = false, want true")
	}

	oneFails := AllOf(StatusIs(200), JSONFieldEquals("status", "ERROR"))
	if oneFails(snap) {
		t.Error("AllOf with one failing = true, want false")
	}

	if !AllOf()(snap) {
		t.Error("AllOf() with no predicates = false, want true")
	}
}

func TestAnyOf(t *testing.T) {
	snap := &Snapshot{StatusCode: 202, Body: []byte(`{"status": "OK"}`)}

	oneMatches := AnyOf(StatusIs(200), JSONFieldEquals("status", "OK"))
	if !oneMatches(snap) {
		t.Error("AnyOf with one matching = false, want true")
	}

	noneMatch := AnyOf(StatusIs(200), JSONFieldEquals("status", "ERROR"))
	if noneMatch(snap) {
		t.Error("AnyOf with none matching = true, want false")
	}

	if AnyOf()(snap) {
		t.Error("AnyOf() with no predicates = true, want false")
	}
}
