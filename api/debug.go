// Package api
// Author: momentics
//
// Runtime introspection contract.

package api

// Debug exposes named probes evaluated on demand.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe adds or replaces a probe.
	RegisterProbe(name string, fn func() any)
}
