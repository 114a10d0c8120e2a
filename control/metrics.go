// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters for transports and the receive loop.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-net/api"
)

// MetricsRegistry holds named counters and gauges.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{metrics: make(map[string]any)}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments an unsigned counter, creating it at zero.
func (mr *MetricsRegistry) Add(key string, delta uint64) {
	mr.mu.Lock()
	cur, _ := mr.metrics[key].(uint64)
	mr.metrics[key] = cur + delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Record stores a transport counter snapshot under "transport.<name>.".
func (mr *MetricsRegistry) Record(st api.TransportStats) {
	prefix := "transport." + st.Name + "."
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.metrics[prefix+"state"] = st.State.String()
	mr.metrics[prefix+"queued"] = st.Queued
	mr.metrics[prefix+"sent"] = st.Sent
	mr.metrics[prefix+"send_failures"] = st.SendFailures
	mr.metrics[prefix+"received"] = st.Received
	mr.metrics[prefix+"pushed"] = st.Pushed
	mr.metrics[prefix+"dropped.not_ready"] = st.DroppedNotReady
	mr.metrics[prefix+"dropped.oversize"] = st.DroppedOversize
	mr.metrics[prefix+"dropped.queue_full"] = st.DroppedFull
	mr.metrics[prefix+"dropped.buffer_too_small"] = st.DroppedTooSmall
	mr.updated = time.Now()
}

// Updated returns the time of the last write.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
