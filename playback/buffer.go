package playback

import (
	"sort"

	"github.com/example/netsim_playback/core"
)

type bufferedEvent struct {
	ev  core.Event
	seq uint64
}

// Buffer keeps events ordered by tick, then by insertion sequence. It is not
// safe for concurrent use; the engine guards it.
type Buffer struct {
	entries []bufferedEvent
	nextSeq uint64
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Insert stores ev after every buffered event with tick <= ev.Tick().
func (b *Buffer) Insert(ev core.Event) {
	if b == nil {
		return
	}
	tick := ev.Tick()
	idx := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].ev.Tick() > tick
	})
	entry := bufferedEvent{ev: ev, seq: b.nextSeq}
	b.nextSeq++
	b.entries = append(b.entries, bufferedEvent{})
	copy(b.entries[idx+1:], b.entries[idx:])
	b.entries[idx] = entry
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Events returns a copy of the buffered events in storage order.
func (b *Buffer) Events() []core.Event {
	if b == nil || len(b.entries) == 0 {
		return nil
	}
	out := make([]core.Event, len(b.entries))
	for i, entry := range b.entries {
		out[i] = entry.ev
	}
	return out
}

// Drain returns every buffered event in storage order and empties the buffer.
func (b *Buffer) Drain() []core.Event {
	out := b.Events()
	b.Clear()
	return out
}

// Clear drops every event and returns how many were removed.
func (b *Buffer) Clear() int {
	if b == nil {
		return 0
	}
	n := len(b.entries)
	b.entries = b.entries[:0]
	return n
}
