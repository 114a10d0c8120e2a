// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control using control package primitives.

package adapters

import (
	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/control"
)

// Ensure compile-time interface compliance.
var _ api.Control = (*ControlAdapter)(nil)

// ControlAdapter aggregates config, counters and probes behind api.Control.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}

// Stats merges counters, prefixed probe output and config under "config.".
// "metrics.updated" carries the time of the last counter write.
func (c *ControlAdapter) Stats() map[string]any {
	combined := c.metrics.GetSnapshot()
	if ts := c.metrics.Updated(); !ts.IsZero() {
		combined["metrics.updated"] = ts
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	for k, v := range c.config.GetSnapshot() {
		combined["config."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnChange(fn func(changed map[string]any)) {
	c.config.OnChange(fn)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// Metrics exposes the counter registry for direct recording.
func (c *ControlAdapter) Metrics() *control.MetricsRegistry {
	return c.metrics
}
