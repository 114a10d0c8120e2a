// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes evaluated on demand for runtime inspection.

package control

import (
	"runtime"
	"sort"
	"sync"

	"github.com/momentics/hioload-net/api"
)

var _ api.Debug = (*DebugProbes)(nil)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]func() any)}
}

// RegisterProbe inserts or replaces a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Names returns the registered probe names in order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DumpState evaluates every probe in name order. Probes run without the
// lock held.
func (dp *DebugProbes) DumpState() map[string]any {
	names := dp.Names()
	fns := make([]func() any, len(names))
	dp.mu.RLock()
	for i, name := range names {
		fns[i] = dp.probes[name]
	}
	dp.mu.RUnlock()
	out := make(map[string]any, len(names))
	for i, name := range names {
		out[name] = fns[i]()
	}
	return out
}

// RegisterPlatformProbes adds host information probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.goroutines", func() any { return runtime.NumGoroutine() })
}
