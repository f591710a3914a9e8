package config

import (
	"sort"
	"time"

	"github.com/pmcalder/opwait"
)

// WaitSpec pairs a built [opwait.Operation] with its CLI presentation:
// the configured name and the effective timeout for this operation.
type WaitSpec struct {
	// Name is the operation's display name from the configuration.
	Name string

	// Timeout is the operation's wait timeout (its own, or the global
	// default when unset).
	Timeout time.Duration

	// Operation is the handler to pass to the wait loop.
	Operation *opwait.Operation
}

// BuildWaitSpecs converts parsed configuration into ready-to-wait
// operations, in configuration order.
func BuildWaitSpecs(cfg *Config) ([]WaitSpec, error) {
	specs := make([]WaitSpec, 0, len(cfg.Operations))

	for _, oc := range cfg.Operations {
		op, err := buildOperation(oc)
		if err != nil {
			return nil, err
		}

		timeout := oc.Timeout.Duration()
		if timeout == 0 {
			timeout = cfg.Timeout.Duration()
		}

		specs = append(specs, WaitSpec{
			Name:      oc.Name,
			Timeout:   timeout,
			Operation: op,
		})
	}

	return specs, nil
}

// ClientOptions derives the library client options implied by the
// configuration.
func ClientOptions(cfg *Config) []opwait.Option {
	opts := []opwait.Option{
		opwait.WithInterval(cfg.Interval.Duration()),
	}
	if cfg.StrictStatus {
		opts = append(opts, opwait.WithStrictStatus())
	}
	return opts
}

// buildOperation converts a single OperationConfig to an SDK Operation.
func buildOperation(oc OperationConfig) (*opwait.Operation, error) {
	var opts []opwait.OperationOption

	if pred := buildPredicate(oc.Finished); pred != nil {
		opts = append(opts, opwait.FinishedWhen(pred))
	}

	if oc.Failed.Path != "" {
		opts = append(opts, opwait.FailWhen(oc.Failed.Path, oc.Failed.Values...))
	}

	if oc.Follow != "" {
		opts = append(opts, opwait.FollowLink(oc.Follow))
	}

	if len(oc.Headers) > 0 {
		opts = append(opts, opwait.WithRequestHeaders(mapToKeyValuePairs(oc.Headers)...))
	}

	if oc.TolerateErrors > 0 {
		opts = append(opts, opwait.TolerateTransportErrors(oc.TolerateErrors))
	}

	return opwait.NewOperation(oc.URL, opts...)
}

// buildPredicate converts a predicate configuration to an SDK Predicate.
// Returns nil for the default (any 2xx status), which NewOperation
// already applies.
func buildPredicate(pc PredicateConfig) opwait.Predicate {
	switch pc.Type {
	case "status":
		return opwait.StatusIs(pc.Codes...)
	case "json":
		return opwait.JSONFieldEquals(pc.Path, pc.Values...)
	case "header":
		return opwait.HeaderPresent(pc.Header)
	default:
		// "" and "success": NewOperation defaults to StatusSuccess
		return nil
	}
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
