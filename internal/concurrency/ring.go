// File: internal/concurrency/ring.go
// Package concurrency implements the bounded packet ring.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PacketQueue is a fixed-capacity circular buffer of packet slots with
// atomic head/tail, padded to prevent false sharing. Packets are copied in
// and out, so no buffer is ever aliased between producer and consumer.
// Implements api.PacketRing for cross-package consistency.

package concurrency

import (
	"net/netip"
	"sync/atomic"

	"github.com/momentics/hioload-net/api"
)

const (
	// DefaultQueueCapacity is the number of packet slots in a queue.
	DefaultQueueCapacity = 64
	// DefaultMaxPacketSize bounds the payload of a single slot.
	DefaultMaxPacketSize = 2048
)

// Ensure compile-time interface compliance.
var _ api.PacketRing = (*PacketQueue)(nil)

// InboundPacket is one queue slot. Data is a fixed window into the queue's
// slab and is only meaningful up to Length.
type InboundPacket struct {
	Data   []byte
	Length int
	From   netip.AddrPort
}

// PacketQueue is a lock-free ring buffer (single-producer, single-consumer safe).
//
// head and tail are monotonic counters; the slot index is counter % capacity
// and the occupancy is tail - head, so 0 <= Len() <= Cap() always holds.
// Push is the only writer of tail. Pop, Drop and Reset write head and must
// be called from a single consumer at a time.
type PacketQueue struct {
	head    atomic.Uint64
	_       [56]byte // Padding for hot/cold separation
	tail    atomic.Uint64
	_       [56]byte // Padding to separate tail from other data
	slots   []InboundPacket
	maxSize int
}

// NewPacketQueue allocates capacity slots of maxSize bytes each up front.
// Non-positive arguments fall back to the defaults.
func NewPacketQueue(capacity, maxSize int) *PacketQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxPacketSize
	}
	slab := make([]byte, capacity*maxSize)
	slots := make([]InboundPacket, capacity)
	for i := range slots {
		slots[i].Data = slab[i*maxSize : (i+1)*maxSize : (i+1)*maxSize]
	}
	return &PacketQueue{slots: slots, maxSize: maxSize}
}

// Push copies p into the tail slot. Oversized or empty input is rejected
// whole, never truncated. When the queue is full the new packet is the one
// dropped; queued packets are left untouched.
func (q *PacketQueue) Push(p []byte, from netip.AddrPort) error {
	if len(p) == 0 {
		return api.ErrEmptyPacket
	}
	if len(p) > q.maxSize {
		return api.ErrOversize.WithContext("length", len(p)).WithContext("max", q.maxSize)
	}
	tail := q.tail.Load()
	head := q.head.Load()
	if tail-head >= uint64(len(q.slots)) {
		return api.ErrQueueFull
	}
	slot := &q.slots[tail%uint64(len(q.slots))]
	slot.Length = copy(slot.Data, p)
	slot.From = from
	q.tail.Store(tail + 1)
	return nil
}

// Peek returns the length of the head packet, or 0 when empty.
func (q *PacketQueue) Peek() int {
	head := q.head.Load()
	if head >= q.tail.Load() {
		return 0
	}
	return q.slots[head%uint64(len(q.slots))].Length
}

// Pop copies the head packet into dst and dequeues it. It returns (0, nil)
// when empty. If the head packet does not fit in dst it is dequeued and
// discarded, dst is left untouched, and ErrBufferTooSmall is returned.
func (q *PacketQueue) Pop(dst []byte, from *netip.AddrPort) (int, error) {
	head := q.head.Load()
	if head >= q.tail.Load() {
		return 0, nil
	}
	slot := &q.slots[head%uint64(len(q.slots))]
	if slot.Length > len(dst) {
		n := slot.Length
		q.head.Store(head + 1)
		return 0, api.ErrBufferTooSmall.WithContext("length", n).WithContext("max", len(dst))
	}
	n := copy(dst, slot.Data[:slot.Length])
	if from != nil {
		*from = slot.From
	}
	q.head.Store(head + 1)
	return n, nil
}

// Drop discards the head packet. It reports whether one was removed.
func (q *PacketQueue) Drop() bool {
	head := q.head.Load()
	if head >= q.tail.Load() {
		return false
	}
	q.head.Store(head + 1)
	return true
}

// Reset logically discards every queued packet.
func (q *PacketQueue) Reset() {
	q.head.Store(q.tail.Load())
}

// Len returns number of packets currently in the queue.
func (q *PacketQueue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	n := int(tail - head)
	if n > len(q.slots) {
		n = len(q.slots)
	}
	return n
}

// Cap returns fixed queue capacity.
func (q *PacketQueue) Cap() int {
	return len(q.slots)
}

// MaxPacketSize returns the per-slot payload bound.
func (q *PacketQueue) MaxPacketSize() int {
	return q.maxSize
}
