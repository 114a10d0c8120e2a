// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

// State enumerates the lifecycle of a queue-fed transport.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// TransportStats is a point-in-time counter snapshot for one transport.
type TransportStats struct {
	Name            string
	State           State
	Queued          int
	Sent            uint64
	SendFailures    uint64
	Received        uint64
	Pushed          uint64
	DroppedNotReady uint64
	DroppedOversize uint64
	DroppedFull     uint64
	DroppedTooSmall uint64
}

// Dropped sums all drop counters.
func (s TransportStats) Dropped() uint64 {
	return s.DroppedNotReady + s.DroppedOversize + s.DroppedFull + s.DroppedTooSmall
}
