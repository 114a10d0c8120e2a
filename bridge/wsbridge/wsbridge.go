// Package wsbridge
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WebSocket relay for the browser-channel transport. One peer connection is
// active at a time; a new connection replaces the previous one.

package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/bridge"
)

// Ensure compile-time interface compliance.
var _ api.Bridge = (*Bridge)(nil)

// ErrSignalRejected is returned when the transport refuses readiness.
var ErrSignalRejected = errors.New("wsbridge: transport rejected readiness signal")

// Options configures the relay.
type Options struct {
	// ReadLimit caps a single inbound message; larger messages close the peer.
	ReadLimit int64
	// WriteTimeout bounds a single synchronous Send.
	WriteTimeout time.Duration
	// AllowedOrigins lists accepted Origin headers; empty accepts any.
	AllowedOrigins []string
	// OnClose runs after the active peer disconnects.
	OnClose func()
}

// Bridge implements api.Bridge over a WebSocket connection.
type Bridge struct {
	mu      sync.RWMutex // guards conn and connID
	writeMu sync.Mutex   // serializes writes to the active peer
	conn    *websocket.Conn
	connID  uuid.UUID

	target   bridge.Target
	opts     Options
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New creates a relay and installs it as target's bridge.
func New(target bridge.Target, opts Options, log *zap.Logger) *Bridge {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 64 * 1024
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bridge{target: target, opts: opts, log: log.Named("wsbridge")}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     b.checkOrigin,
	}
	target.SetBridge(b)
	return b
}

func (b *Bridge) checkOrigin(r *http.Request) bool {
	if len(b.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range b.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// Ready reports whether a peer is connected.
func (b *Bridge) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn != nil
}

// Send writes p as one binary message. It returns len(p), or -1 when no
// peer is connected or the write fails.
func (b *Bridge) Send(p []byte) int {
	b.mu.RLock()
	conn, id := b.conn, b.connID
	b.mu.RUnlock()
	if conn == nil {
		return -1
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(b.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		b.log.Debug("write failed", zap.Stringer("conn", id), zap.Error(err))
		return -1
	}
	return len(p)
}

// ServeHTTP upgrades the request and relays until the peer disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	if err := b.Serve(r.Context(), conn); err != nil {
		b.log.Debug("peer finished", zap.Error(err))
	}
}

// Dial connects to a relay server and serves the connection until it ends.
func (b *Bridge) Dial(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	return b.Serve(ctx, conn)
}

// Serve makes conn the active peer, signals readiness and pushes every
// inbound message into the transport. It blocks until the peer disconnects
// or ctx ends.
func (b *Bridge) Serve(ctx context.Context, conn *websocket.Conn) error {
	id := b.attach(conn)
	log := b.log.With(zap.Stringer("conn", id), zap.Stringer("remote", conn.RemoteAddr()))
	defer b.detach(conn)

	if !b.target.Signal() {
		log.Info("readiness signal rejected")
		return ErrSignalRejected
	}
	log.Info("peer attached")

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	conn.SetReadLimit(b.opts.ReadLimit)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				log.Info("peer detached")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if mt != websocket.BinaryMessage && mt != websocket.TextMessage {
			continue
		}
		if !b.pushFrom(conn, data) {
			log.Info("peer replaced")
			return nil
		}
	}
}

// pushFrom forwards data only while conn is the active peer. The read lock
// keeps attach from swapping peers between the check and the push.
func (b *Bridge) pushFrom(conn *websocket.Conn, data []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.conn != conn {
		return false
	}
	b.target.Push(data)
	return true
}

// Close disconnects the active peer, if any.
func (b *Bridge) Close() error {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return conn.Close()
}

func (b *Bridge) attach(conn *websocket.Conn) uuid.UUID {
	b.mu.Lock()
	prev := b.conn
	b.conn = conn
	b.connID = uuid.New()
	id := b.connID
	b.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return id
}

func (b *Bridge) detach(conn *websocket.Conn) {
	b.mu.Lock()
	active := b.conn == conn
	if active {
		b.conn = nil
	}
	b.mu.Unlock()
	_ = conn.Close()
	if active && b.opts.OnClose != nil {
		b.opts.OnClose()
	}
}
