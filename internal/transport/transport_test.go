package transport_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/transport"
)

func newMock(name string) *api.MockTransport { return &api.MockTransport{NameValue: name} }

func TestRegistry_DefaultsOnFirstRead(t *testing.T) {
	udp := newMock("UDP")
	reg := transport.NewRegistry(udp, nil)
	if got := reg.Current(); got != udp || got.Name() != "UDP" {
		t.Fatalf("Current = %v", got)
	}
	if reg.Default() != udp {
		t.Fatal("Default did not return the default transport")
	}
}

func TestRegistry_SetReturnsPrevious(t *testing.T) {
	udp, alt := newMock("UDP"), newMock("WebRTC")
	reg := transport.NewRegistry(udp, nil)

	if prev := reg.Set(alt); prev != udp {
		t.Fatalf("first Set returned %v, want default", prev)
	}
	if reg.Current() != alt {
		t.Fatal("Set did not install transport")
	}
	if prev := reg.Set(udp); prev != alt {
		t.Fatalf("Set returned %v, want alt", prev)
	}
	if reg.Default() != udp {
		t.Fatal("Default changed")
	}
}

func TestRegistry_SetNilIsQuery(t *testing.T) {
	udp, alt := newMock("UDP"), newMock("WebRTC")
	reg := transport.NewRegistry(udp, nil)
	if prev := reg.Set(nil); prev != udp {
		t.Fatalf("Set(nil) on unset registry = %v", prev)
	}
	reg.Set(alt)
	if prev := reg.Set(nil); prev != alt {
		t.Fatalf("Set(nil) = %v, want alt", prev)
	}
	if reg.Current() != alt {
		t.Fatal("Set(nil) changed active transport")
	}
}

func TestRegistry_ResetRestoresDefault(t *testing.T) {
	udp, alt := newMock("UDP"), newMock("WebRTC")
	reg := transport.NewRegistry(udp, nil)
	reg.Set(alt)
	reg.Reset()
	if reg.Current() != udp {
		t.Fatal("Reset did not restore default resolution")
	}
}

func TestRegistry_LogsSwitch(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := transport.NewRegistry(newMock("UDP"), zap.New(core))
	reg.Set(newMock("WebRTC"))
	reg.Set(nil)
	entries := logs.FilterMessage("switching transport").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 switch log, got %d", len(entries))
	}
	if to := entries[0].ContextMap()["to"]; to != "WebRTC" {
		t.Errorf("logged to = %v", to)
	}
}
