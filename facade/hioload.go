// File: facade/hioload.go
// Unified facade layer for hioload-net.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HioloadNet is the networking context: it owns the transport registry, the
// default UDP transport, the browser-channel transport with its optional
// WebSocket relay, and the control surface. The receive loop only ever talks
// to Registry.Current, so the active transport may change between ticks.

package facade

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/adapters"
	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/bridge/wsbridge"
	"github.com/momentics/hioload-net/internal/config"
	"github.com/momentics/hioload-net/internal/observability"
	"github.com/momentics/hioload-net/internal/transport"
	"github.com/momentics/hioload-net/internal/transport/udp"
	"github.com/momentics/hioload-net/internal/transport/webrtc"
)

var _ api.GracefulShutdown = (*HioloadNet)(nil)

// Handler receives one packet from the active transport. p is only valid
// for the duration of the call.
type Handler func(t api.Transport, p []byte, from netip.AddrPort)

// HioloadNet is the main facade type.
type HioloadNet struct {
	cfg      *config.Config
	log      *zap.Logger
	level    *zap.AtomicLevel
	registry *transport.Registry
	udp      *udp.Transport
	rtc      *webrtc.Transport
	ws       *wsbridge.Bridge
	control  *adapters.ControlAdapter

	mu      sync.Mutex // protects started, socket, httpSrv
	started bool
	socket  *net.UDPConn
	httpSrv *http.Server
	httpLn  net.Listener
}

// Option customizes New.
type Option func(*HioloadNet)

// WithLevel lets "log.level" config changes retune a running logger.
func WithLevel(level zap.AtomicLevel) Option {
	return func(h *HioloadNet) { h.level = &level }
}

// New constructs the networking context. Nothing touches the network
// until Start.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*HioloadNet, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &HioloadNet{cfg: cfg, log: log, control: adapters.NewControlAdapter()}
	for _, opt := range opts {
		opt(h)
	}

	h.udp = udp.New(nil, cfg.UDP.MaxDatagram, log)
	h.registry = transport.NewRegistry(h.udp, log)
	h.rtc = webrtc.New(nil, h.registry, webrtc.Options{
		QueueCapacity: cfg.WebRTC.QueueCapacity,
		MaxPacketSize: cfg.WebRTC.MaxPacketSize,
	}, log)
	if cfg.Bridge.Enable {
		h.ws = wsbridge.New(h.rtc, wsbridge.Options{
			ReadLimit:      cfg.Bridge.ReadLimit,
			WriteTimeout:   time.Duration(cfg.Bridge.WriteTimeoutMS) * time.Millisecond,
			AllowedOrigins: cfg.Bridge.AllowedOrigins,
			OnClose:        h.onBridgeClosed,
		}, log)
	}

	h.control.SetConfig(map[string]any{
		"log.level":                  cfg.Log.Level,
		"udp.listen":                 cfg.UDP.Listen,
		"webrtc.queue_capacity":      cfg.WebRTC.QueueCapacity,
		"webrtc.max_packet_size":     cfg.WebRTC.MaxPacketSize,
		"bridge.enable":              cfg.Bridge.Enable,
		"transport.poll_interval_ms": cfg.Transport.PollIntervalMS,
	})
	h.control.OnChange(h.applyChanges)
	h.control.RegisterDebugProbe("transport.active", func() any { return h.registry.Current().Name() })
	h.control.RegisterDebugProbe("transport.webrtc.queued", func() any { return h.rtc.Poll() })
	return h, nil
}

// Start opens the UDP socket and the relay listener (when configured) and
// initializes the active transport. Subsequent calls have no effect.
func (h *HioloadNet) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	if h.cfg.UDP.Listen != "" {
		conn, err := udp.Open(h.cfg.UDP.Listen, h.cfg.UDP.ReadBuffer, h.cfg.UDP.WriteBuffer)
		if err != nil {
			return fmt.Errorf("udp socket: %w", err)
		}
		h.socket = conn
		h.udp.Attach(conn)
		h.log.Info("udp socket bound", zap.Stringer("addr", conn.LocalAddr()))
	}
	if err := h.registry.Current().Init(); err != nil {
		h.closeSocketLocked()
		return fmt.Errorf("init %s transport: %w", h.registry.Current().Name(), err)
	}
	if h.ws != nil {
		if err := h.startRelayLocked(); err != nil {
			h.closeSocketLocked()
			return err
		}
	}
	h.started = true
	return nil
}

func (h *HioloadNet) startRelayLocked() error {
	ln, err := net.Listen("tcp", h.cfg.Bridge.Listen)
	if err != nil {
		return fmt.Errorf("relay listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(h.cfg.Bridge.Path, h.ws)
	h.httpLn = ln
	h.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := h.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("relay server stopped", zap.Error(err))
		}
	}()
	h.log.Info("websocket relay listening", zap.Stringer("addr", ln.Addr()), zap.String("path", h.cfg.Bridge.Path))
	return nil
}

// Stop shuts transports down and releases sockets. Calling Stop on a
// non-started facade is a no-op.
func (h *HioloadNet) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return nil
	}
	var errs []error
	if h.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if h.ws != nil {
			_ = h.ws.Close()
		}
		errs = append(errs, h.httpSrv.Shutdown(ctx))
		cancel()
		h.httpSrv, h.httpLn = nil, nil
	}
	h.rtc.Shutdown()
	h.udp.Shutdown()
	h.registry.Reset()
	errs = append(errs, h.closeSocketLocked())
	h.started = false
	return errors.Join(errs...)
}

func (h *HioloadNet) closeSocketLocked() error {
	if h.socket == nil {
		return nil
	}
	h.udp.Attach(nil)
	err := h.socket.Close()
	h.socket = nil
	return err
}

// Shutdown delegates to Stop.
func (h *HioloadNet) Shutdown() error {
	return h.Stop()
}

// Current returns the active transport.
func (h *HioloadNet) Current() api.Transport { return h.registry.Current() }

// Registry exposes the transport registry.
func (h *HioloadNet) Registry() *transport.Registry { return h.registry }

// UDP returns the default transport.
func (h *HioloadNet) UDP() *udp.Transport { return h.udp }

// WebRTC returns the browser-channel transport for host bridges.
func (h *HioloadNet) WebRTC() *webrtc.Transport { return h.rtc }

// Relay returns the WebSocket relay, or nil when disabled.
func (h *HioloadNet) Relay() *wsbridge.Bridge { return h.ws }

// RelayAddr returns the relay listener address, or nil when not listening.
func (h *HioloadNet) RelayAddr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.httpLn == nil {
		return nil
	}
	return h.httpLn.Addr()
}

// UDPAddr returns the bound UDP address, or nil.
func (h *HioloadNet) UDPAddr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.socket == nil {
		return nil
	}
	return h.socket.LocalAddr()
}

// GetControl returns the Control interface.
func (h *HioloadNet) GetControl() api.Control { return h.control }

// UseDefault forces the default transport back and returns the previous one.
func (h *HioloadNet) UseDefault() api.Transport {
	return h.registry.Set(h.registry.Default())
}

// Send transmits p through the active transport.
func (h *HioloadNet) Send(p []byte, to netip.AddrPort) (int, error) {
	return h.registry.Current().Send(p, to)
}

// Stats records fresh transport counters and returns the merged view.
func (h *HioloadNet) Stats() map[string]any {
	m := h.control.Metrics()
	m.Record(h.udp.Stats())
	m.Record(h.rtc.Stats())
	return h.control.Stats()
}

// Run drives the receive loop until ctx ends. Each tick drains the active
// transport through Poll/Recv, bounded by max_packets_per_tick.
func (h *HioloadNet) Run(ctx context.Context, handle Handler) error {
	interval := time.Duration(h.cfg.Transport.PollIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	buf := make([]byte, h.cfg.Transport.RecvBuffer)
	for {
		h.Drain(buf, handle)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain performs one loop iteration and returns the packets handled.
func (h *HioloadNet) Drain(buf []byte, handle Handler) int {
	m := h.control.Metrics()
	tr := h.registry.Current()
	handled := 0
	for i := 0; i < h.cfg.Transport.MaxPacketsPerTick && tr.Poll() > 0; i++ {
		var from netip.AddrPort
		n, err := tr.Recv(buf, &from)
		if err != nil {
			m.Add("loop.recv_errors", 1)
			h.log.Debug("recv failed", zap.String("transport", tr.Name()), zap.Error(err))
			continue
		}
		if n == 0 {
			break
		}
		handled++
		handle(tr, buf[:n], from)
	}
	m.Add("loop.ticks", 1)
	m.Add("loop.packets", uint64(handled))
	return handled
}

func (h *HioloadNet) onBridgeClosed() {
	h.rtc.Shutdown()
	if prev := h.registry.Set(h.registry.Default()); prev != h.registry.Default() {
		h.log.Info("relay peer gone, restored default transport", zap.String("from", prev.Name()))
	}
}

func (h *HioloadNet) applyChanges(changed map[string]any) {
	if lvl, ok := changed["log.level"].(string); ok && h.level != nil {
		h.level.SetLevel(observability.ParseLevel(lvl))
		h.log.Info("log level changed", zap.String("level", lvl))
	}
}
