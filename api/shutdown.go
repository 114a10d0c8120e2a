// File: api/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by owners of sockets and listeners.
type GracefulShutdown interface {
	// Shutdown stops background work and releases resources.
	Shutdown() error
}
