package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/pmcalder/opwait"
)

func TestBuildWaitSpecs(t *testing.T) {
	cfg, err := Parse([]byte(`
timeout: 10m
operations:
  - name: quick
    url: https://example.com/quick
    timeout: 30s
  - name: slow
    url: https://example.com/slow
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	specs, err := BuildWaitSpecs(cfg)
	if err != nil {
		t.Fatalf("BuildWaitSpecs() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("len(specs) = %d, want 2", len(specs))
	}

	if specs[0].Name != "quick" || specs[0].Timeout != 30*time.Second {
		t.Errorf("specs[0] = %s/%s, want quick/30s", specs[0].Name, specs[0].Timeout)
	}
	// no per-operation timeout falls back to the global one
	if specs[1].Name != "slow" || specs[1].Timeout != 10*time.Minute {
		t.Errorf("specs[1] = %s/%s, want slow/10m", specs[1].Name, specs[1].Timeout)
	}
	if specs[0].Operation.Target() != "https://example.com/quick" {
		t.Errorf("Target() = %q, want the configured url", specs[0].Operation.Target())
	}
}

func TestBuildWaitSpecs_InvalidOperationURL(t *testing.T) {
	cfg, err := Parse([]byte(`
operations:
  - name: op
    url: not-a-url
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := BuildWaitSpecs(cfg); err == nil {
		t.Error("BuildWaitSpecs() error = nil, want url scheme failure")
	}
}

func TestClientOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
interval: 2s
operations:
  - name: op
    url: https://example.com/op
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	client, err := opwait.New(ClientOptions(cfg)...)
	if err != nil {
		t.Fatalf("New(ClientOptions(cfg)...) error = %v", err)
	}
	defer client.Close()

	if client.Interval() != 2*time.Second {
		t.Errorf("Interval() = %s, want the configured 2s", client.Interval())
	}
}

func TestBuildWaitSpecs_PredicateBehavior(t *testing.T) {
	tests := []struct {
		name     string
		finished string
		snap     opwait.Snapshot
		want     bool
	}{
		{
			"default accepts 2xx",
			"",
			opwait.Snapshot{StatusCode: 200},
			true,
		},
		{
			"default rejects 4xx",
			"",
			opwait.Snapshot{StatusCode: 404},
			false,
		},
		{
			"status shorthand",
			"finished: status:303",
			opwait.Snapshot{StatusCode: 303},
			true,
		},
		{
			"json shorthand",
			"finished: json:status=OK",
			opwait.Snapshot{StatusCode: 202, Body: []byte(`{"status":"OK"}`)},
			true,
		},
		{
			"json shorthand pending",
			"finished: json:status=OK",
			opwait.Snapshot{StatusCode: 202, Body: []byte(`{"status":"RUNNING"}`)},
			false,
		},
		{
			"header shorthand",
			"finished: header:Location",
			opwait.Snapshot{StatusCode: 202, Header: http.Header{"Location": []string{"/r"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := "operations:\n  - name: op\n    url: https://example.com/op\n    " + tt.finished + "\n"
			cfg, err := Parse([]byte(yaml))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			specs, err := BuildWaitSpecs(cfg)
			if err != nil {
				t.Fatalf("BuildWaitSpecs() error = %v", err)
			}

			if got := specs[0].Operation.Finished(&tt.snap); got != tt.want {
				t.Errorf("Finished(%+v) = %v, want %v", tt.snap, got, tt.want)
			}
		})
	}
}
