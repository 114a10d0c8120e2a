// Package transport
// Author: momentics <momentics@gmail.com>
//
// Registry of the active packet transport. Networking code asks the
// registry for the current transport on every loop iteration, so swapping
// transports never requires touching callers.

package transport

import (
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
)

// Ensure compile-time interface compliance.
var _ api.Registry = (*Registry)(nil)

// Registry implements api.Registry and holds the active transport.
// The zero "unset" state is resolved to the default on first read.
type Registry struct {
	mu      sync.RWMutex
	def     api.Transport
	current api.Transport
	log     *zap.Logger
}

// NewRegistry creates a registry whose default transport is def.
func NewRegistry(def api.Transport, log *zap.Logger) *Registry {
	if def == nil {
		panic("transport: nil default transport")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{def: def, log: log.Named("transport")}
}

// Current returns the active transport, caching the default when unset.
func (r *Registry) Current() api.Transport {
	r.mu.RLock()
	cur := r.current
	r.mu.RUnlock()
	if cur != nil {
		return cur
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked()
}

// Set installs t and returns what Current would have returned just before.
// Passing nil is a query: nothing changes and the active transport is returned.
func (r *Registry) Set(t api.Transport) api.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.resolveLocked()
	if t == nil {
		return prev
	}
	r.current = t
	r.log.Info("switching transport", zap.String("to", t.Name()), zap.String("from", prev.Name()))
	return prev
}

// Default returns the built-in default transport regardless of what is active.
func (r *Registry) Default() api.Transport {
	return r.def
}

// Reset returns the registry to the unset state.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
}

func (r *Registry) resolveLocked() api.Transport {
	if r.current == nil {
		r.current = r.def
	}
	return r.current
}
