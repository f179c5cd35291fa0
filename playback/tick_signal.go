package playback

import (
	"context"
	"sync"
)

// TickSignal wraps a condition variable that tracks the latest presented
// display tick. Headless runs use it to wait until a tick reached the screen.
type TickSignal struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value int64
}

// NewTickSignal creates a TickSignal with the provided initial value.
func NewTickSignal(initial int64) *TickSignal {
	ts := &TickSignal{
		value: initial,
	}
	ts.cond = sync.NewCond(&ts.mu)
	return ts
}

// Update raises the presented tick and notifies all waiters when the value grows.
func (ts *TickSignal) Update(tick int64) {
	if ts == nil {
		return
	}
	ts.mu.Lock()
	if tick > ts.value {
		ts.value = tick
		ts.cond.Broadcast()
	}
	ts.mu.Unlock()
}

// Reset forces the value back, e.g. after the engine was reset.
func (ts *TickSignal) Reset(tick int64) {
	if ts == nil {
		return
	}
	ts.mu.Lock()
	ts.value = tick
	ts.cond.Broadcast()
	ts.mu.Unlock()
}

// WaitUntil blocks until the value is >= target or ctx is done. It reports
// whether the target was reached.
func (ts *TickSignal) WaitUntil(ctx context.Context, target int64) bool {
	if ts == nil {
		return false
	}
	stop := context.AfterFunc(ctx, func() {
		ts.mu.Lock()
		ts.cond.Broadcast()
		ts.mu.Unlock()
	})
	defer stop()

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for ts.value < target {
		if ctx.Err() != nil {
			return false
		}
		ts.cond.Wait()
	}
	return true
}

// Value returns the latest presented tick.
func (ts *TickSignal) Value() int64 {
	if ts == nil {
		return 0
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.value
}
