package main

import (
	"context"
	"sync"

	"github.com/example/netsim_playback/visual"
)

// CommandQueue carries viewer commands to the replayer.
type CommandQueue interface {
	// Enqueue reports false when the queue is full.
	Enqueue(cmd visual.ControlCommand) bool
	NextCommand() (visual.ControlCommand, bool)
	WaitCommand(ctx context.Context) (visual.ControlCommand, bool)
	Len() int
}

// commandQueue is a bounded FIFO. A speed or legend command replaces one of
// the same type waiting at the tail, so dragging the speed slider holds at
// most one slot and only the final value is applied.
type commandQueue struct {
	mu       sync.Mutex
	items    []visual.ControlCommand
	capacity int
	ready    chan struct{}
}

func newCommandQueue(capacity int) CommandQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &commandQueue{
		items:    make([]visual.ControlCommand, 0, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

func supersedes(t visual.ControlCommandType) bool {
	return t == visual.CommandSpeed || t == visual.CommandLegend
}

func (q *commandQueue) Enqueue(cmd visual.ControlCommand) bool {
	q.mu.Lock()
	n := len(q.items)
	switch {
	case n > 0 && supersedes(cmd.Type) && q.items[n-1].Type == cmd.Type:
		q.items[n-1] = cmd
	case n >= q.capacity:
		q.mu.Unlock()
		return false
	default:
		q.items = append(q.items, cmd)
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

func (q *commandQueue) NextCommand() (visual.ControlCommand, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
	cmd := q.items[0]
	copy(q.items, q.items[1:])
	q.items = q.items[:len(q.items)-1]
	return cmd, true
}

func (q *commandQueue) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	for {
		if cmd, ok := q.NextCommand(); ok {
			return cmd, true
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return visual.ControlCommand{Type: visual.CommandNone}, false
		}
	}
}

func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
