package simulator

import (
	"context"
	"sync/atomic"

	"github.com/example/netsim_playback/visual"
)

// ControlSource yields viewer commands. Every visual.Visualizer is one.
type ControlSource interface {
	NextCommand() (visual.ControlCommand, bool)
	WaitCommand(ctx context.Context) (visual.ControlCommand, bool)
}

// ControlLoop applies viewer commands between trace steps. CommandNone
// placeholders are discarded without reaching apply.
type ControlLoop struct {
	source  ControlSource
	apply   func(visual.ControlCommand)
	applied atomic.Uint64
}

// NewControlLoop creates a loop reading from source.
func NewControlLoop(source ControlSource, apply func(visual.ControlCommand)) *ControlLoop {
	return &ControlLoop{source: source, apply: apply}
}

func (c *ControlLoop) ready() bool {
	return c != nil && c.source != nil && c.apply != nil
}

// Drain applies every command already queued and returns how many it applied.
func (c *ControlLoop) Drain() int {
	if !c.ready() {
		return 0
	}
	n := 0
	for {
		cmd, ok := c.source.NextCommand()
		if !ok {
			return n
		}
		if c.dispatch(cmd) {
			n++
		}
	}
}

// Wait blocks for one command and applies it. It returns false when ctx
// ended first or the command was a placeholder.
func (c *ControlLoop) Wait(ctx context.Context) bool {
	if !c.ready() {
		return false
	}
	cmd, ok := c.source.WaitCommand(ctx)
	if !ok {
		return false
	}
	return c.dispatch(cmd)
}

func (c *ControlLoop) dispatch(cmd visual.ControlCommand) bool {
	if cmd.Type == visual.CommandNone || cmd.Type == "" {
		return false
	}
	c.apply(cmd)
	c.applied.Add(1)
	return true
}

// Applied returns how many commands reached apply.
func (c *ControlLoop) Applied() uint64 {
	if c == nil {
		return 0
	}
	return c.applied.Load()
}
