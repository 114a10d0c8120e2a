package api_test

import (
	"errors"
	"fmt"
	"net/netip"
	"testing"

	"github.com/momentics/hioload-net/api"
)

func TestTransportInterfaceCompliance(t *testing.T) {
	var _ api.Transport = (*api.MockTransport)(nil)
}

func TestMockTransportDefaults(t *testing.T) {
	m := &api.MockTransport{NameValue: "mock"}
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}
	if n, err := m.Send([]byte("abc"), netip.AddrPort{}); n != 3 || err != nil {
		t.Fatalf("Send = %d, %v", n, err)
	}
	if n, err := m.Recv(make([]byte, 8), nil); n != 0 || err != nil {
		t.Fatalf("Recv = %d, %v", n, err)
	}
	if m.Poll() != 0 || m.Name() != "mock" {
		t.Fatal("unexpected mock defaults")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := api.ErrQueueFull.WithContext("count", 64)
	if !errors.Is(err, api.ErrQueueFull) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, api.ErrOversize) {
		t.Fatal("different codes must not match")
	}
	wrapped := fmt.Errorf("push: %w", err)
	if api.CodeOf(wrapped) != api.ErrCodeQueueFull {
		t.Errorf("CodeOf = %v", api.CodeOf(wrapped))
	}
	if len(api.ErrQueueFull.Context) != 0 {
		t.Error("WithContext mutated the sentinel")
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if api.CodeOf(nil) != api.ErrCodeOK {
		t.Error("nil should map to ok")
	}
	if api.CodeOf(errors.New("boom")) != api.ErrCodeInternal {
		t.Error("foreign errors should map to internal")
	}
}

func TestStateString(t *testing.T) {
	if api.StateReady.String() != "ready" || api.StateUninitialized.String() != "uninitialized" {
		t.Fatal("unexpected state names")
	}
}
