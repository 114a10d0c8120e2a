// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for the packet path. PacketQueue is a bounded,
// preallocated single-producer/single-consumer queue of inbound packets
// that never allocates after construction.
package concurrency
