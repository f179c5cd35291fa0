package queue

// Unbounded disables the capacity limit of a Backlog.
const Unbounded = -1

// MutateFunc is invoked after backlog length or capacity changes.
type MutateFunc func(length int, capacity int)

// BacklogHooks defines callbacks for backlog lifecycle events.
type BacklogHooks[T any] struct {
	OnEnqueue func(item T)
	OnDequeue func(item T)
	OnDrop    func(item T) // oldest item evicted to make room
}

// Backlog is a FIFO with length/capacity bookkeeping and hooks. When full, a
// push evicts the oldest item instead of failing, so producers never block.
// Backlog is not safe for concurrent use; callers hold their own lock.
type Backlog[T any] struct {
	name     string
	capacity int
	items    []T
	hooks    BacklogHooks[T]
	mutate   MutateFunc
}

// NewBacklog constructs a backlog with optional hooks and mutate callback.
func NewBacklog[T any](name string, capacity int, mutate MutateFunc, hooks BacklogHooks[T]) *Backlog[T] {
	q := &Backlog[T]{
		name:     name,
		capacity: capacity,
		hooks:    hooks,
		mutate:   mutate,
	}
	q.notify()
	return q
}

// Name returns the backlog name.
func (q *Backlog[T]) Name() string {
	if q == nil {
		return ""
	}
	return q.name
}

// Capacity returns current capacity (-1 for unbounded).
func (q *Backlog[T]) Capacity() int {
	if q == nil {
		return 0
	}
	return q.capacity
}

// SetCapacity updates the capacity, evicting the oldest items if the backlog
// no longer fits.
func (q *Backlog[T]) SetCapacity(capacity int) {
	if q == nil {
		return
	}
	q.capacity = capacity
	for q.capacity >= 0 && len(q.items) > q.capacity {
		q.dropFront()
	}
	q.notify()
}

// Len returns the number of items.
func (q *Backlog[T]) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Push appends an item. It reports true when an older item was evicted.
func (q *Backlog[T]) Push(item T) bool {
	if q == nil || q.capacity == 0 {
		return false
	}
	dropped := false
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.dropFront()
		dropped = true
	}
	q.items = append(q.items, item)
	if q.hooks.OnEnqueue != nil {
		q.hooks.OnEnqueue(item)
	}
	q.notify()
	return dropped
}

// PopFront removes and returns the oldest item.
func (q *Backlog[T]) PopFront() (T, bool) {
	var zero T
	if q == nil || len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if q.hooks.OnDequeue != nil {
		q.hooks.OnDequeue(item)
	}
	q.notify()
	return item, true
}

// Clear discards every item without firing dequeue hooks and returns how many
// were removed.
func (q *Backlog[T]) Clear() int {
	if q == nil {
		return 0
	}
	n := len(q.items)
	q.items = nil
	q.notify()
	return n
}

// Items exposes the underlying slice (read-only operations only).
func (q *Backlog[T]) Items() []T {
	if q == nil {
		return nil
	}
	return q.items
}

func (q *Backlog[T]) dropFront() {
	var zero T
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if q.hooks.OnDrop != nil {
		q.hooks.OnDrop(item)
	}
}

func (q *Backlog[T]) notify() {
	if q == nil || q.mutate == nil {
		return
	}
	q.mutate(len(q.items), q.capacity)
}
