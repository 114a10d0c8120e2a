// Package webrtc
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Browser-channel transport. Outbound packets go synchronously through a
// host Bridge; inbound packets arrive asynchronously via Push and wait in a
// bounded PacketQueue until the networking loop drains them with Recv.

package webrtc

import (
	"errors"
	"net/netip"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/concurrency"
)

// Name is the display name of the browser-channel transport.
const Name = "WebRTC"

// PlaceholderAddr is stamped as the source of every inbound packet. The
// channel carries no per-packet addressing; higher layers may match on it.
var PlaceholderAddr = netip.MustParseAddrPort("127.0.0.1:27015")

// Ensure compile-time interface compliance.
var (
	_ api.Transport = (*Transport)(nil)
	_ api.Ingress   = (*Transport)(nil)
)

// Options sizes the inbound queue. Zero values use the package defaults.
type Options struct {
	QueueCapacity int
	MaxPacketSize int
}

// Transport implements api.Transport and api.Ingress.
//
// Push holds producerMu; Recv holds consumerMu; Init and Shutdown hold both
// (producer first). The queue itself is lock-free between the two roles.
type Transport struct {
	producerMu sync.Mutex
	consumerMu sync.Mutex
	bridgeMu   sync.RWMutex

	bridge   api.Bridge
	registry api.Registry
	queue    *concurrency.PacketQueue
	ready    atomic.Bool
	log      *zap.Logger

	sent         atomic.Uint64
	sendFailures atomic.Uint64
	received     atomic.Uint64
	pushed       atomic.Uint64
	dropNotReady atomic.Uint64
	dropOversize atomic.Uint64
	dropFull     atomic.Uint64
	dropTooSmall atomic.Uint64
}

// New creates an uninitialized transport. registry may be nil, in which
// case Init does not self-activate.
func New(bridge api.Bridge, registry api.Registry, opts Options, log *zap.Logger) *Transport {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{
		bridge:   bridge,
		registry: registry,
		queue:    concurrency.NewPacketQueue(opts.QueueCapacity, opts.MaxPacketSize),
		log:      log.Named("webrtc"),
	}
}

// SetBridge installs the host bridge. It does not change readiness.
func (t *Transport) SetBridge(b api.Bridge) {
	t.bridgeMu.Lock()
	t.bridge = b
	t.bridgeMu.Unlock()
}

func (t *Transport) currentBridge() api.Bridge {
	t.bridgeMu.RLock()
	defer t.bridgeMu.RUnlock()
	return t.bridge
}

// Name returns "WebRTC".
func (t *Transport) Name() string { return Name }

// Init asks the bridge whether the channel is usable. On success the queue
// is emptied, the transport becomes ready and installs itself as the active
// transport. On failure nothing changes.
func (t *Transport) Init() error {
	b := t.currentBridge()
	if b == nil || !b.Ready() {
		t.log.Info("bridge not ready")
		return api.ErrBridgeNotReady
	}
	t.producerMu.Lock()
	t.consumerMu.Lock()
	t.queue.Reset()
	t.ready.Store(true)
	t.consumerMu.Unlock()
	t.producerMu.Unlock()

	t.log.Info("transport initialized",
		zap.Int("queue_capacity", t.queue.Cap()),
		zap.Int("max_packet_size", t.queue.MaxPacketSize()))
	if t.registry != nil {
		t.registry.Set(t)
	}
	return nil
}

// Signal is the host readiness entry point.
func (t *Transport) Signal() bool {
	return t.Init() == nil
}

// Shutdown marks the transport not ready and discards queued packets.
// A later Init starts from an empty queue.
func (t *Transport) Shutdown() {
	t.producerMu.Lock()
	t.consumerMu.Lock()
	t.ready.Store(false)
	t.queue.Reset()
	t.consumerMu.Unlock()
	t.producerMu.Unlock()
	t.log.Info("transport shut down")
}

// Ready reports whether Init has succeeded since the last Shutdown.
func (t *Transport) Ready() bool { return t.ready.Load() }

// State returns the lifecycle state.
func (t *Transport) State() api.State {
	if t.ready.Load() {
		return api.StateReady
	}
	return api.StateUninitialized
}

// Send forwards p to the bridge. Anything but a full accept is an error;
// the channel has no framing to resume a split packet.
func (t *Transport) Send(p []byte, to netip.AddrPort) (int, error) {
	if !t.ready.Load() {
		t.sendFailures.Add(1)
		t.log.Debug("send before init")
		return 0, api.ErrNotReady.WithContext("transport", Name)
	}
	if len(p) > t.queue.MaxPacketSize() {
		t.sendFailures.Add(1)
		t.log.Debug("outbound packet too large", zap.Int("len", len(p)))
		return 0, api.ErrOversize.WithContext("length", len(p)).WithContext("max", t.queue.MaxPacketSize())
	}
	b := t.currentBridge()
	if b == nil {
		t.sendFailures.Add(1)
		return 0, api.ErrBridgeNotReady
	}
	t.log.Debug("sending", zap.Int("len", len(p)), zap.Stringer("to", to))
	accepted := b.Send(p)
	if accepted != len(p) {
		t.sendFailures.Add(1)
		t.log.Debug("send failed", zap.Int("requested", len(p)), zap.Int("accepted", accepted))
		return 0, api.ErrBridgeMismatch.WithContext("requested", len(p)).WithContext("accepted", accepted)
	}
	t.sent.Add(1)
	return len(p), nil
}

// Poll returns the exact number of queued packets, or 0 when not ready.
func (t *Transport) Poll() int {
	if !t.ready.Load() {
		return 0
	}
	return t.queue.Len()
}

// Recv dequeues the head packet into p. A head packet longer than p is
// discarded and reported as api.ErrBufferTooSmall; p is never partially
// filled.
func (t *Transport) Recv(p []byte, from *netip.AddrPort) (int, error) {
	if !t.ready.Load() {
		return 0, nil
	}
	t.consumerMu.Lock()
	defer t.consumerMu.Unlock()
	if !t.ready.Load() {
		return 0, nil
	}
	if need := t.queue.Peek(); need > len(p) {
		t.queue.Drop()
		t.dropTooSmall.Add(1)
		t.log.Debug("packet too large for buffer, dropping", zap.Int("len", need), zap.Int("max", len(p)))
		return 0, api.ErrBufferTooSmall.WithContext("length", need).WithContext("max", len(p))
	}
	n, err := t.queue.Pop(p, from)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	t.received.Add(1)
	t.log.Debug("received", zap.Int("len", n), zap.Int("queued", t.queue.Len()))
	return n, nil
}

// Push is the host ingress entry point. Input is dropped, never truncated,
// when the transport is not ready, the size is out of range, or the queue is
// full; in the last case already queued packets are kept.
func (t *Transport) Push(data []byte) {
	t.producerMu.Lock()
	defer t.producerMu.Unlock()
	if !t.ready.Load() {
		t.dropNotReady.Add(1)
		t.log.Debug("packet received before init, dropping", zap.Int("len", len(data)))
		return
	}
	err := t.queue.Push(data, PlaceholderAddr)
	switch {
	case err == nil:
		t.pushed.Add(1)
		t.log.Debug("queued", zap.Int("len", len(data)), zap.Int("queued", t.queue.Len()))
	case errors.Is(err, api.ErrQueueFull):
		t.dropFull.Add(1)
		t.log.Debug("queue full, dropping packet", zap.Int("len", len(data)))
	default:
		t.dropOversize.Add(1)
		t.log.Debug("invalid packet size, dropping", zap.Int("len", len(data)))
	}
}

// Stats returns a counter snapshot.
func (t *Transport) Stats() api.TransportStats {
	return api.TransportStats{
		Name:            Name,
		State:           t.State(),
		Queued:          t.Poll(),
		Sent:            t.sent.Load(),
		SendFailures:    t.sendFailures.Load(),
		Received:        t.received.Load(),
		Pushed:          t.pushed.Load(),
		DroppedNotReady: t.dropNotReady.Load(),
		DroppedOversize: t.dropOversize.Load(),
		DroppedFull:     t.dropFull.Load(),
		DroppedTooSmall: t.dropTooSmall.Load(),
	}
}

// MaxPacketSize returns the inbound and outbound payload bound.
func (t *Transport) MaxPacketSize() int { return t.queue.MaxPacketSize() }
