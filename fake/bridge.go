// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the host-side contracts.

package fake

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-net/api"
)

// Ensure compile-time interface compliance.
var _ api.Bridge = (*Bridge)(nil)

// Bridge is a fake implementation of api.Bridge. Every frame handed to Send
// is recorded in FIFO order; the accepted byte count is configurable.
type Bridge struct {
	mu     sync.Mutex
	ready  bool
	accept func(n int) int
	sent   *queue.Queue
	checks int
}

// NewBridge creates a ready bridge that accepts every byte.
func NewBridge() *Bridge {
	return &Bridge{
		ready: true,
		sent:  queue.New(),
	}
}

// Ready implements api.Bridge.Ready.
func (b *Bridge) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checks++
	return b.ready
}

// Send implements api.Bridge.Send.
func (b *Bridge) Send(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	frame := make([]byte, len(p))
	copy(frame, p)
	b.sent.Add(frame)
	if b.accept != nil {
		return b.accept(len(p))
	}
	return len(p)
}

// SetReady toggles the readiness answer.
func (b *Bridge) SetReady(ready bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = ready
}

// SetAccept overrides the accepted byte count reported by Send.
// A nil fn restores full acceptance.
func (b *Bridge) SetAccept(fn func(n int) int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accept = fn
}

// ReadyChecks returns how many times Ready was consulted.
func (b *Bridge) ReadyChecks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checks
}

// Pending returns the number of recorded frames not yet taken.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent.Length()
}

// Next removes and returns the oldest recorded frame.
func (b *Bridge) Next() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sent.Length() == 0 {
		return nil, false
	}
	return b.sent.Remove().([]byte), true
}
