// Package buffer provides the bounded in-memory store for captured
// query events. The buffer is append-only and FIFO: when an append
// pushes the length past capacity, the oldest surplus events are
// evicted in a single batch.
package buffer

import "github.com/sqlscope/sqlscope/internal/model"

// DefaultCapacity is the event limit used by the application.
const DefaultCapacity = 5000

// Buffer is a bounded, insertion-ordered event store. It is not safe
// for concurrent use; the owning engine serializes access.
type Buffer struct {
	events   []model.QueryEvent
	capacity int
	version  uint64
}

// New creates an empty buffer. A capacity <= 0 falls back to
// DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append adds an event at the tail, evicting from the head if the
// buffer would exceed its capacity.
func (b *Buffer) Append(e model.QueryEvent) {
	b.events = append(b.events, e)
	b.trim()
	b.version++
}

// AppendBatch adds a slice of events at the tail in order. Eviction
// happens once, after all events are inserted, so the surplus leaves as
// a single batch. A nil or empty slice is a no-op.
func (b *Buffer) AppendBatch(events []model.QueryEvent) {
	if len(events) == 0 {
		return
	}
	b.events = append(b.events, events...)
	b.trim()
	b.version++
}

func (b *Buffer) trim() {
	if excess := len(b.events) - b.capacity; excess > 0 {
		remaining := len(b.events) - excess
		copy(b.events, b.events[excess:])
		b.events = b.events[:remaining]
	}
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
	b.version++
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Capacity returns the configured event limit.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Events returns the buffered events oldest first. The slice aliases
// the buffer's storage and is only valid until the next mutation.
func (b *Buffer) Events() []model.QueryEvent {
	return b.events
}

// Get looks an event up by identifier against the full buffer.
// The second result is false when the event was evicted or cleared.
func (b *Buffer) Get(id string) (model.QueryEvent, bool) {
	for i := range b.events {
		if b.events[i].ID == id {
			return b.events[i], true
		}
	}
	return model.QueryEvent{}, false
}

// Version increments on every mutation. Derived views use it to decide
// whether a memoized result is still current.
func (b *Buffer) Version() uint64 {
	return b.version
}
