package datachannel_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/momentics/hioload-net/bridge/datachannel"
	"github.com/momentics/hioload-net/internal/transport"
	"github.com/momentics/hioload-net/internal/transport/udp"
	internalrtc "github.com/momentics/hioload-net/internal/transport/webrtc"
)

// fakeChannel mirrors the pion callback contract: OnOpen on an already open
// channel runs the handler on a new goroutine, and the handler runs at most
// once.
type fakeChannel struct {
	mu       sync.Mutex
	state    webrtc.DataChannelState
	sendErr  error
	sent     [][]byte
	onOpen   func()
	openOnce sync.Once
	onClose  func()
	onMsg    func(webrtc.DataChannelMessage)
}

func (c *fakeChannel) Label() string { return "game" }

func (c *fakeChannel) ReadyState() webrtc.DataChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeChannel) OnOpen(f func()) {
	c.mu.Lock()
	c.onOpen = f
	open := c.state == webrtc.DataChannelStateOpen
	c.mu.Unlock()
	if open {
		go c.openOnce.Do(f)
	}
}

func (c *fakeChannel) OnClose(f func()) { c.onClose = f }

func (c *fakeChannel) OnMessage(f func(webrtc.DataChannelMessage)) {
	c.onMsg = f
}

func (c *fakeChannel) Send(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), p...))
	return nil
}

func (c *fakeChannel) open() {
	c.mu.Lock()
	c.state = webrtc.DataChannelStateOpen
	f := c.onOpen
	c.mu.Unlock()
	c.openOnce.Do(f)
}

func TestAttach_OpenMessageClose(t *testing.T) {
	reg := transport.NewRegistry(udp.New(nil, 0, nil), nil)
	tr := internalrtc.New(nil, reg, internalrtc.Options{}, nil)
	dc := &fakeChannel{state: webrtc.DataChannelStateConnecting}
	closed := false
	datachannel.Attach(tr, dc, func() { closed = true }, nil)

	if tr.Ready() {
		t.Fatal("transport ready before channel open")
	}
	dc.open()
	if !tr.Ready() || reg.Current() != tr {
		t.Fatal("open did not activate transport")
	}

	dc.onMsg(webrtc.DataChannelMessage{Data: []byte("snapshot")})
	buf := make([]byte, 32)
	if n, err := tr.Recv(buf, nil); err != nil || string(buf[:n]) != "snapshot" {
		t.Fatalf("Recv = %q, %v", buf[:n], err)
	}

	if n, err := tr.Send([]byte("input"), internalrtc.PlaceholderAddr); err != nil || n != 5 {
		t.Fatalf("Send = %d, %v", n, err)
	}
	if len(dc.sent) != 1 || string(dc.sent[0]) != "input" {
		t.Fatalf("channel got %q", dc.sent)
	}

	dc.sendErr = errors.New("sctp closed")
	if _, err := tr.Send([]byte("input"), internalrtc.PlaceholderAddr); err == nil {
		t.Fatal("expected failure when channel send fails")
	}

	dc.onClose()
	if !closed {
		t.Fatal("close hook not called")
	}
}

func TestAttach_AlreadyOpenSignalsOnce(t *testing.T) {
	reg := transport.NewRegistry(udp.New(nil, 0, nil), nil)
	tr := internalrtc.New(nil, reg, internalrtc.Options{}, nil)
	dc := &fakeChannel{state: webrtc.DataChannelStateOpen}
	datachannel.Attach(tr, dc, nil, nil)

	deadline := time.Now().Add(2 * time.Second)
	for !tr.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("already open channel never signalled")
		}
		time.Sleep(time.Millisecond)
	}

	dc.onMsg(webrtc.DataChannelMessage{Data: []byte("first-snapshot")})
	if got := tr.Poll(); got != 1 {
		t.Fatalf("Poll after push = %d", got)
	}
	// Give any stray readiness signal time to reset the queue.
	time.Sleep(20 * time.Millisecond)
	if got := tr.Poll(); got != 1 {
		t.Fatalf("queued packet lost, Poll = %d", got)
	}
	buf := make([]byte, 32)
	if n, err := tr.Recv(buf, nil); err != nil || string(buf[:n]) != "first-snapshot" {
		t.Fatalf("Recv = %q, %v", buf[:n], err)
	}
}
