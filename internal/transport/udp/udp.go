// Package udp
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Default connectionless datagram transport. Socket setup and teardown are
// owned by the caller (see Open); the transport only moves single datagrams
// through the attached socket.

package udp

import (
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
)

// Name is the display name of the default transport.
const Name = "UDP"

// DefaultMaxDatagram is the largest IPv4 UDP payload.
const DefaultMaxDatagram = 65507

// Ensure compile-time interface compliance.
var _ api.Transport = (*Transport)(nil)

// DatagramConn is the platform socket the transport delegates to.
// *net.UDPConn satisfies it.
type DatagramConn interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	Close() error
}

// Transport implements api.Transport over a DatagramConn.
type Transport struct {
	mu          sync.RWMutex
	conn        DatagramConn
	maxDatagram int
	log         *zap.Logger

	sent         atomic.Uint64
	received     atomic.Uint64
	sendFailures atomic.Uint64
	tooSmall     atomic.Uint64
}

// New wraps conn. conn may be nil and attached later.
func New(conn DatagramConn, maxDatagram int, log *zap.Logger) *Transport {
	if maxDatagram <= 0 || maxDatagram > DefaultMaxDatagram {
		maxDatagram = DefaultMaxDatagram
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{conn: conn, maxDatagram: maxDatagram, log: log.Named("udp")}
}

// Attach swaps the underlying socket and returns the previous one.
// The caller keeps ownership of both.
func (t *Transport) Attach(conn DatagramConn) DatagramConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.conn
	t.conn = conn
	return prev
}

// Conn returns the attached socket, or nil.
func (t *Transport) Conn() DatagramConn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conn
}

// Init always succeeds; the socket layer owns datagram setup.
func (t *Transport) Init() error { return nil }

// Shutdown is a no-op; the socket layer owns teardown.
func (t *Transport) Shutdown() {}

// Name returns "UDP".
func (t *Transport) Name() string { return Name }

// Send hands p to the socket as one datagram. Socket errors and short
// writes are both reported as errors.
func (t *Transport) Send(p []byte, to netip.AddrPort) (int, error) {
	conn := t.Conn()
	if conn == nil {
		t.sendFailures.Add(1)
		return 0, api.ErrNotReady.WithContext("transport", Name)
	}
	if len(p) > t.maxDatagram {
		t.sendFailures.Add(1)
		return 0, api.ErrOversize.WithContext("length", len(p)).WithContext("max", t.maxDatagram)
	}
	n, err := conn.WriteToUDPAddrPort(p, to)
	if err != nil {
		t.sendFailures.Add(1)
		t.log.Debug("send failed", zap.Stringer("to", to), zap.Int("len", len(p)), zap.Error(err))
		return 0, fmt.Errorf("udp send to %s: %w", to, err)
	}
	if n != len(p) {
		t.sendFailures.Add(1)
		return 0, api.NewError(api.ErrCodeInternal, "short datagram write").
			WithContext("requested", len(p)).WithContext("written", n)
	}
	t.sent.Add(1)
	t.log.Debug("sent", zap.Stringer("to", to), zap.Int("len", n))
	return n, nil
}

// Poll cannot count pending datagrams without receiving them, so it
// returns 1 ("attempt a receive") whenever a socket is attached.
func (t *Transport) Poll() int {
	if t.Conn() == nil {
		return 0
	}
	return 1
}

// Recv performs one non-blocking receive. A datagram larger than p is
// consumed and reported as api.ErrBufferTooSmall where the platform can
// detect truncation.
func (t *Transport) Recv(p []byte, from *netip.AddrPort) (int, error) {
	conn := t.Conn()
	if conn == nil {
		return 0, nil
	}
	n, src, truncated, err := recvOnce(conn, p)
	if err != nil {
		return 0, fmt.Errorf("udp recv: %w", err)
	}
	if n == 0 && !truncated {
		return 0, nil
	}
	if truncated {
		t.tooSmall.Add(1)
		t.log.Debug("datagram too large, dropping", zap.Stringer("from", src), zap.Int("max", len(p)))
		return 0, api.ErrBufferTooSmall.WithContext("max", len(p))
	}
	if from != nil {
		*from = src
	}
	t.received.Add(1)
	return n, nil
}

// Stats returns a counter snapshot.
func (t *Transport) Stats() api.TransportStats {
	st := api.TransportStats{
		Name:            Name,
		Sent:            t.sent.Load(),
		SendFailures:    t.sendFailures.Load(),
		Received:        t.received.Load(),
		DroppedTooSmall: t.tooSmall.Load(),
	}
	if t.Conn() != nil {
		st.State = api.StateReady
	}
	return st
}
