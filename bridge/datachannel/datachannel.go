// Package datachannel
// Author: momentics <momentics@gmail.com>
//
// Relay over an already negotiated pion DataChannel. Signaling and ICE are
// handled by the caller.

package datachannel

import (
	"go.uber.org/zap"

	"github.com/pion/webrtc/v4"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/bridge"
)

// Ensure compile-time interface compliance.
var (
	_ api.Bridge = (*Bridge)(nil)
	_ Channel    = (*webrtc.DataChannel)(nil)
)

// Channel is the subset of *webrtc.DataChannel the relay uses.
type Channel interface {
	Label() string
	ReadyState() webrtc.DataChannelState
	Send(data []byte) error
	OnOpen(f func())
	OnClose(f func())
	OnMessage(f func(msg webrtc.DataChannelMessage))
}

// Bridge implements api.Bridge over a DataChannel.
type Bridge struct {
	dc  Channel
	log *zap.Logger
}

// Attach installs a relay for dc on target. When dc opens, target is
// signalled once; every message is pushed; onClose (optional) runs when dc
// closes. pion fires OnOpen asynchronously for a channel that is already
// open, so that case needs no extra signal here.
func Attach(target bridge.Target, dc Channel, onClose func(), log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bridge{dc: dc, log: log.Named("datachannel").With(zap.String("label", dc.Label()))}
	target.SetBridge(b)

	dc.OnOpen(func() {
		if !target.Signal() {
			b.log.Info("readiness signal rejected")
			return
		}
		b.log.Info("channel open")
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		target.Push(msg.Data)
	})
	dc.OnClose(func() {
		b.log.Info("channel closed")
		if onClose != nil {
			onClose()
		}
	})
	return b
}

// Ready reports whether the channel is open.
func (b *Bridge) Ready() bool {
	return b.dc.ReadyState() == webrtc.DataChannelStateOpen
}

// Send forwards p as one message. It returns len(p), or -1 on failure.
func (b *Bridge) Send(p []byte) int {
	if err := b.dc.Send(p); err != nil {
		b.log.Debug("send failed", zap.Error(err))
		return -1
	}
	return len(p)
}
