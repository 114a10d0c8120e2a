// Package bridge
// Author: momentics <momentics@gmail.com>
//
// Host-side bridges for the queue-fed browser-channel transport:
//
//   - wsbridge: relays packets over a WebSocket connection
//   - datachannel: relays packets over an already negotiated WebRTC DataChannel
//
// A bridge answers api.Bridge for the transport's outbound path and drives
// api.Ingress (Signal on open, Push per message) for the inbound path.
package bridge

import "github.com/momentics/hioload-net/api"

// Target is the transport side a bridge attaches to.
type Target interface {
	api.Ingress
	SetBridge(b api.Bridge)
}
