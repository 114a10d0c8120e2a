// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pluggable packet transport layer. The Registry tracks the single active
// api.Transport; concrete transports live in subpackages:
//
//   - udp: the default connectionless datagram transport
//   - webrtc: a queue-fed browser channel driven by a host bridge
//
// Higher layers call Registry.Current and drive Init/Poll/Recv/Send through
// the returned interface only.

package transport
