// Package api
// Author: momentics@gmail.com
//
// Bounded packet ring for cross-goroutine producer/consumer hand-off.

package api

import "net/netip"

// PacketRing is a fixed-capacity FIFO of copied packets.
// One goroutine produces with Push; one goroutine consumes with the rest.
type PacketRing interface {
	// Push copies p into the tail slot. Fails when full or oversized.
	Push(p []byte, from netip.AddrPort) error
	// Pop copies the head packet into dst and removes it.
	Pop(dst []byte, from *netip.AddrPort) (int, error)
	// Len returns current number of packets.
	Len() int
	// Cap returns ring capacity.
	Cap() int
	// Reset discards all queued packets.
	Reset()
}
