package simulator

import (
	"sync"

	"github.com/example/netsim_playback/hooks"
)

// RepaintBridge forwards repaint requests from the playback hooks to a viewer
// unless visualization is headless.
type RepaintBridge struct {
	mu       sync.RWMutex
	headless bool
	notify   func(tick int64)
	sent     uint64
}

// NewRepaintBridge constructs a bridge with headless flag and notify callback.
func NewRepaintBridge(headless bool, notify func(tick int64)) *RepaintBridge {
	return &RepaintBridge{
		headless: headless,
		notify:   notify,
	}
}

// Install registers the bridge as a repaint hook on broker.
func (v *RepaintBridge) Install(broker *hooks.PluginBroker) {
	if v == nil || broker == nil {
		return
	}
	broker.RegisterRepaint(func(ctx *hooks.RepaintContext) error {
		v.Notify(ctx.Tick)
		return nil
	})
}

// IsHeadless reports whether visualization output is disabled.
func (v *RepaintBridge) IsHeadless() bool {
	if v == nil {
		return true
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.headless
}

// SetHeadless updates the headless flag.
func (v *RepaintBridge) SetHeadless(headless bool) {
	if v == nil {
		return
	}
	v.mu.Lock()
	v.headless = headless
	v.mu.Unlock()
}

// Notify forwards a repaint request when visualization is enabled.
func (v *RepaintBridge) Notify(tick int64) {
	if v == nil {
		return
	}
	v.mu.Lock()
	notify := v.notify
	if notify == nil || v.headless {
		v.mu.Unlock()
		return
	}
	v.sent++
	v.mu.Unlock()
	notify(tick)
}

// UpdateNotifier swaps the notify callback (e.g. after switching viewers).
func (v *RepaintBridge) UpdateNotifier(notify func(tick int64)) {
	if v == nil {
		return
	}
	v.mu.Lock()
	v.notify = notify
	v.mu.Unlock()
}

// Sent returns how many repaint requests reached the viewer.
func (v *RepaintBridge) Sent() uint64 {
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sent
}
