package fake_test

import (
	"testing"

	"github.com/momentics/hioload-net/fake"
)

func TestBridgeRecordsFramesInOrder(t *testing.T) {
	b := fake.NewBridge()
	if !b.Ready() {
		t.Fatal("new bridge should be ready")
	}
	for _, s := range []string{"a", "bb", "ccc"} {
		if n := b.Send([]byte(s)); n != len(s) {
			t.Fatalf("Send(%q) = %d", s, n)
		}
	}
	if b.Pending() != 3 {
		t.Fatalf("Pending = %d", b.Pending())
	}
	for _, want := range []string{"a", "bb", "ccc"} {
		got, ok := b.Next()
		if !ok || string(got) != want {
			t.Fatalf("Next = %q, %v", got, ok)
		}
	}
	if _, ok := b.Next(); ok {
		t.Fatal("expected empty log")
	}
}

func TestBridgeAcceptOverride(t *testing.T) {
	b := fake.NewBridge()
	b.SetAccept(func(n int) int { return n - 1 })
	if n := b.Send([]byte("abcd")); n != 3 {
		t.Fatalf("Send = %d", n)
	}
	b.SetAccept(nil)
	b.SetReady(false)
	if b.Ready() || b.ReadyChecks() != 1 {
		t.Fatal("readiness toggle not honoured")
	}
}
