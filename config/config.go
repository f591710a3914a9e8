// Package config provides YAML configuration parsing for the opwait CLI.
//
// This package enables waiting on asynchronous REST operations from a
// standalone binary with a configuration file, as an alternative to the
// programmatic SDK approach.
//
// Example configuration:
//
//	interval: 5s
//	timeout: 15m
//
//	operations:
//	  - name: dataset export
//	    url: https://api.example.com/operations/42
//	    finished: json:status=OK|ERROR
//	    failed: status=ERROR
//	    follow: links.result
//	    headers:
//	      Authorization: Bearer ${API_TOKEN}
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 15 * time.Minute
)

// minInterval is the minimum allowed polling interval for production
// configs. This prevents accidental DoS of status endpoints with overly
// aggressive polling.
const minInterval = 1 * time.Second

// Config is the root configuration structure for the opwait CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Interval is the fixed delay between poll attempts.
	// Accepts duration strings like "5s", "1m", "500ms". Defaults to 5s.
	Interval Duration `yaml:"interval"`

	// Timeout is the default overall wait timeout per operation.
	// Defaults to 15m. Individual operations may override it.
	Timeout Duration `yaml:"timeout"`

	// StrictStatus makes the transport treat status codes >= 400 as
	// transport errors (see the library's WithStrictStatus option).
	StrictStatus bool `yaml:"strict_status"`

	// Operations lists the operations to wait for, in order.
	Operations []OperationConfig `yaml:"operations"`
}

// OperationConfig defines a single operation to wait for.
type OperationConfig struct {
	// Name is the display name used in output and logs.
	Name string `yaml:"name"`

	// URL is the operation's status URI.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Headers are custom HTTP headers sent with each poll request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Finished decides when a response means the operation finished.
	// Can be shorthand ("success", "status:200", "json:status=OK|ERROR",
	// "header:Location") or structured. Defaults to "success".
	Finished PredicateConfig `yaml:"finished"`

	// Failed turns a matching field of the finished payload into a
	// terminal failure. Shorthand "path=V1|V2" or structured.
	Failed FailureConfig `yaml:"failed"`

	// Follow is a dot-notation path to a next-URI in the finished
	// payload; when present the final result is fetched from there.
	Follow string `yaml:"follow"`

	// Timeout overrides the global wait timeout for this operation.
	Timeout Duration `yaml:"timeout"`

	// TolerateErrors is the number of transport errors to resolve before
	// failing the wait. Only meaningful with strict_status.
	TolerateErrors int `yaml:"tolerate_errors"`
}

// PredicateConfig specifies how to decide that a response means the
// operation finished.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	finished: success
//	finished: status:200,303
//	finished: json:status=OK|ERROR
//	finished: header:Location
//
// Structured object:
//
//	finished:
//	  type: json
//	  path: task.status
//	  values: [OK, ERROR]
type PredicateConfig struct {
	// Type is the predicate type: "success", "status", "json", "header".
	Type string

	// Codes lists the finishing status codes (for type: status).
	Codes []int

	// Path is the JSON field path (for type: json).
	Path string

	// Values are the matching field values (for type: json).
	Values []string

	// Header is the header name whose presence means finished
	// (for type: header).
	Header string
}

// FailureConfig turns a field of the finished payload into a terminal
// failure.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	failed: status=ERROR
//	failed: task.state=ERROR|CANCELLED
//
// Structured object:
//
//	failed:
//	  path: task.state
//	  values: [ERROR, CANCELLED]
type FailureConfig struct {
	// Path is the JSON field path in the finished payload.
	Path string

	// Values are the field values that mean failure.
	Values []string
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for PredicateConfig.
func (p *PredicateConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return p.parseShorthand(s)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type   string   `yaml:"type"`
			Codes  []int    `yaml:"codes"`
			Path   string   `yaml:"path"`
			Values []string `yaml:"values"`
			Header string   `yaml:"header"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		p.Type = raw.Type
		p.Codes = raw.Codes
		p.Path = raw.Path
		p.Values = raw.Values
		p.Header = raw.Header
		return nil
	}

	return fmt.Errorf("finished must be a string or object, got %v", node.Kind)
}

// parseShorthand parses finished-predicate shorthand syntax.
//
// Supported formats:
//   - "success" → any 2xx status
//   - "status:200,303" → one of the listed status codes
//   - "json:path=V1|V2" → JSON field at path equals one of the values
//   - "header:Name" → the named response header is present
func (p *PredicateConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if idx := strings.Index(s, ":"); idx != -1 {
		p.Type = s[:idx]
		value := s[idx+1:]

		switch p.Type {
		case "status":
			for _, part := range strings.Split(value, ",") {
				code, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return fmt.Errorf("invalid status code %q: %w", part, err)
				}
				p.Codes = append(p.Codes, code)
			}
		case "json":
			path, values, err := parsePathValues(value)
			if err != nil {
				return err
			}
			p.Path = path
			p.Values = values
		case "header":
			p.Header = value
		default:
			return fmt.Errorf("unknown finished predicate type %q", p.Type)
		}
		return nil
	}

	switch s {
	case "success":
		p.Type = s
	default:
		return fmt.Errorf("unknown finished predicate %q (expected 'success', 'status:codes', 'json:path=values', or 'header:name')", s)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for FailureConfig.
func (f *FailureConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		path, values, err := parsePathValues(s)
		if err != nil {
			return err
		}
		f.Path = path
		f.Values = values
		return nil
	}

	if node.Kind == yaml.MappingNode {
		var raw struct {
			Path   string   `yaml:"path"`
			Values []string `yaml:"values"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		f.Path = raw.Path
		f.Values = raw.Values
		return nil
	}

	return fmt.Errorf("failed must be a string or object, got %v", node.Kind)
}

// parsePathValues splits "path=V1|V2" into a path and its values.
func parsePathValues(s string) (string, []string, error) {
	idx := strings.Index(s, "=")
	if idx <= 0 || idx == len(s)-1 {
		return "", nil, fmt.Errorf("expected 'path=value' or 'path=V1|V2', got %q", s)
	}
	path := s[:idx]
	values := strings.Split(s[idx+1:], "|")
	return path, values, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before use.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Interval == 0 {
		cfg.Interval = Duration(defaultInterval)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(defaultTimeout)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for i := range cfg.Operations {
		oc := &cfg.Operations[i]

		expanded, err := expandEnvVars(oc.URL)
		if err != nil {
			return nil, fmt.Errorf("operation (%s): %w", oc.Name, err)
		}
		oc.URL = expanded

		for k, v := range oc.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return nil, fmt.Errorf("operation (%s) header %q: %w", oc.Name, k, err)
			}
			oc.Headers[k] = expanded
		}
	}

	return &cfg, nil
}

// validate checks the parsed configuration for structural errors.
func (c *Config) validate() error {
	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}
	if c.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration())
	}
	if len(c.Operations) == 0 {
		return fmt.Errorf("at least one operation is required")
	}

	seen := make(map[string]bool, len(c.Operations))
	for i, oc := range c.Operations {
		if oc.Name == "" {
			return fmt.Errorf("operation %d: name is required", i)
		}
		if seen[oc.Name] {
			return fmt.Errorf("duplicate operation name: %q", oc.Name)
		}
		seen[oc.Name] = true

		if oc.URL == "" {
			return fmt.Errorf("operation (%s): url is required", oc.Name)
		}
		if oc.Timeout.Duration() < 0 {
			return fmt.Errorf("operation (%s): timeout cannot be negative", oc.Name)
		}
		if oc.TolerateErrors < 0 {
			return fmt.Errorf("operation (%s): tolerate_errors cannot be negative", oc.Name)
		}
		if err := validatePredicate(oc.Finished); err != nil {
			return fmt.Errorf("operation (%s): finished: %w", oc.Name, err)
		}
		if (oc.Failed.Path == "") != (len(oc.Failed.Values) == 0) {
			return fmt.Errorf("operation (%s): failed requires both path and values", oc.Name)
		}
	}
	return nil
}

// validatePredicate checks a predicate configuration for completeness.
func validatePredicate(pc PredicateConfig) error {
	switch pc.Type {
	case "", "success":
		return nil
	case "status":
		if len(pc.Codes) == 0 {
			return fmt.Errorf("status predicate requires at least one code")
		}
	case "json":
		if pc.Path == "" || len(pc.Values) == 0 {
			return fmt.Errorf("json predicate requires path and values")
		}
	case "header":
		if pc.Header == "" {
			return fmt.Errorf("header predicate requires a header name")
		}
	default:
		return fmt.Errorf("unknown predicate type %q", pc.Type)
	}
	return nil
}
