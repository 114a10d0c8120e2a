package adapters_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-net/adapters"
	"github.com/momentics/hioload-net/api"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	if len(ctrl.GetConfig()) != 0 {
		t.Error("Expected empty config on init")
	}
	var changed map[string]any
	ctrl.OnChange(func(c map[string]any) { changed = c })
	if err := ctrl.SetConfig(map[string]any{"log.level": "debug"}); err != nil {
		t.Fatal(err)
	}
	if changed["log.level"] != "debug" {
		t.Error("change listener not called")
	}

	ctrl.Metrics().Record(api.TransportStats{Name: "UDP", Received: 4})
	ctrl.RegisterDebugProbe("transport.active", func() any { return "UDP" })
	stats := ctrl.Stats()
	if stats["config.log.level"] != "debug" {
		t.Errorf("config not merged: %v", stats)
	}
	if stats["transport.UDP.received"] != uint64(4) {
		t.Errorf("metrics not merged: %v", stats["transport.UDP.received"])
	}
	if stats["debug.transport.active"] != "UDP" {
		t.Errorf("probe not merged: %v", stats["debug.transport.active"])
	}
	if ts, ok := stats["metrics.updated"].(time.Time); !ok || ts.IsZero() {
		t.Errorf("metrics.updated = %v", stats["metrics.updated"])
	}
}

func TestControlAdapterNoMetricsTimestampBeforeWrites(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	if _, ok := ctrl.Stats()["metrics.updated"]; ok {
		t.Error("metrics.updated reported before any counter write")
	}
}
