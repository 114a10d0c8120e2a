// Package api
// Author: momentics <momentics@gmail.com>
//
// Host bridge boundary for transports whose byte delivery happens outside
// the process loop (browser data channels, websocket relays).

package api

// Bridge performs actual byte delivery for a queue-fed transport.
type Bridge interface {
	// Ready reports whether the host channel is usable. It is synchronous
	// and has no side effects.
	Ready() bool

	// Send delivers p synchronously and returns the number of bytes the
	// host accepted. Anything other than len(p) is a failure.
	Send(p []byte) int
}

// Ingress is implemented by transports that accept host-driven input.
type Ingress interface {
	// Signal is called by the host when the channel becomes usable.
	Signal() bool

	// Push hands one inbound message to the transport. Fire-and-forget.
	Push(data []byte)
}
