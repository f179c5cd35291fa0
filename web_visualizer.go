package main

import (
	"context"
	"sync/atomic"

	"github.com/example/netsim_playback/visual"
)

// WebVisualizer bridges the playback engine with the web server.
type WebVisualizer struct {
	headless atomic.Bool
	server   *WebServer
}

// NewWebVisualizer creates a web visualizer around server. The caller starts
// the server.
func NewWebVisualizer(server *WebServer) *WebVisualizer {
	return &WebVisualizer{server: server}
}

// SetHeadless switches headless state.
func (w *WebVisualizer) SetHeadless(headless bool) {
	w.headless.Store(headless)
}

// IsHeadless returns whether visualizer runs without UI.
func (w *WebVisualizer) IsHeadless() bool {
	return w.headless.Load()
}

// RequestRepaint notifies browsers that tick is on display.
func (w *WebVisualizer) RequestRepaint(tick int64) {
	if w.server != nil && !w.IsHeadless() {
		w.server.NotifyRepaint(tick)
	}
}

// NextCommand returns the next control command if available, non-blocking.
func (w *WebVisualizer) NextCommand() (visual.ControlCommand, bool) {
	if w.server == nil {
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
	return w.server.Commands().NextCommand()
}

// WaitCommand blocks until a browser sends a command or ctx ends.
func (w *WebVisualizer) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	if w.server == nil {
		<-ctx.Done()
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
	return w.server.Commands().WaitCommand(ctx)
}
