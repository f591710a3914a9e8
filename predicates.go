package opwait

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Predicate decides whether a captured response means the polled operation
// finished.
//
// Predicates are pure functions over a [Snapshot]: the same snapshot
// always produces the same answer. This makes them easy to test and to
// compose with [AllOf] and [AnyOf].
//
// Built-in predicates: [StatusSuccess], [StatusIs], [JSONFieldEquals],
// [HeaderPresent].
type Predicate func(snap *Snapshot) bool

// StatusSuccess is a [Predicate] that reports finished for any 2xx status
// code. This suits APIs that answer a non-2xx status while the operation
// runs. When the in-progress answer is also 2xx (e.g. 202 Accepted), use
// [StatusIs] instead.
var StatusSuccess Predicate = func(snap *Snapshot) bool {
	return snap.IsSuccess()
}

// StatusIs returns a [Predicate] that reports finished when the status
// code equals any of the given codes.
//
// Example:
//
//	opwait.StatusIs(200, 303)
func StatusIs(codes ...int) Predicate {
	return func(snap *Snapshot) bool {
		for _, code := range codes {
			if snap.StatusCode == code {
				return true
			}
		}
		return false
	}
}

// HeaderPresent returns a [Predicate] that reports finished when the named
// response header is present and non-empty. Useful for APIs that announce
// completion with a Location header.
func HeaderPresent(name string) Predicate {
	return func(snap *Snapshot) bool {
		return snap.Header.Get(name) != ""
	}
}

// JSONFieldEquals returns a [Predicate] that decodes the body as JSON and
// compares the field at path (dot notation for nested objects, e.g.
// "task.status") against the given values, case-insensitively.
//
// The predicate reports finished when the field equals any of the values.
// It reports not-finished when the body is not JSON, the field is absent,
// or no value matches. Boolean and numeric field values are compared via
// their string forms: true/1 → "true", false/0 → "false".
//
// Example:
//
//	// finished once {"status": ...} is OK or ERROR
//	opwait.JSONFieldEquals("status", "OK", "ERROR")
func JSONFieldEquals(path string, values ...string) Predicate {
	return func(snap *Snapshot) bool {
		got, ok := lookupJSONPath(snap.Body, path)
		if !ok {
			return false
		}
		for _, want := range values {
			if strings.EqualFold(got, want) {
				return true
			}
		}
		return false
	}
}

// AllOf returns a [Predicate] that reports finished only when every given
// predicate does.
func AllOf(preds ...Predicate) Predicate {
	return func(snap *Snapshot) bool {
		for _, p := range preds {
			if !p(snap) {
				return false
			}
		}
		return true
	}
}

// AnyOf returns a [Predicate] that reports finished when at least one of
// the given predicates does.
func AnyOf(preds ...Predicate) Predicate {
	return func(snap *Snapshot) bool {
		for _, p := range preds {
			if p(snap) {
				return true
			}
		}
		return false
	}
}

// lookupJSONPath decodes body as JSON and returns the scalar value at the
// dot-notation path as a string. The second return value is false when the
// body is not JSON, the path is absent, or the value is not a scalar.
func lookupJSONPath(body []byte, path string) (string, bool) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", false
	}

	value := walkJSONPath(data, strings.Split(path, "."))
	if value == "" {
		return "", false
	}
	return value, true
}

// walkJSONPath walks a decoded JSON structure using dot notation parts.
func walkJSONPath(data interface{}, parts []string) string {
	current := data

	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current, ok = obj[part]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == 0 {
			return "false"
		}
		if v == 1 {
			return "true"
		}
		// convert other numbers to string representation
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
