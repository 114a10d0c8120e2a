// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the packet transport contract consumed by the networking loop.
// Callers obtain the active Transport from a Registry and never touch a
// concrete transport type directly.

package api

import "net/netip"

// Transport is a packet-oriented channel with a uniform lifecycle.
// Implementations are long-lived singletons per networking context.
type Transport interface {
	// Init prepares the transport for use. A nil error means ready.
	Init() error

	// Shutdown releases transport state. It never fails.
	Shutdown()

	// Send transmits one packet. It returns len(p) on success; a partial
	// send is reported as an error, never as a short count.
	Send(p []byte, to netip.AddrPort) (int, error)

	// Poll reports pending packets. Transports that cannot count cheaply
	// return a non-zero hint meaning "a Recv may succeed".
	Poll() int

	// Recv reads at most len(p) bytes of one packet. It returns (0, nil)
	// when nothing is pending. If from is non-nil it receives the source.
	Recv(p []byte, from *netip.AddrPort) (int, error)

	// Name is a display name, not a lookup key.
	Name() string
}

// Registry holds the currently active transport.
type Registry interface {
	// Current returns the active transport, resolving the default if unset.
	Current() Transport

	// Set installs t and returns the previously active transport.
	// A nil t only queries and leaves the active transport unchanged.
	Set(t Transport) Transport

	// Default returns the built-in default transport.
	Default() Transport
}
