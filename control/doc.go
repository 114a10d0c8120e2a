// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, transport counters, and debug introspection.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads with change listeners
//   - Transport and receive-loop counters
//   - Named debug probes evaluated on demand
package control
