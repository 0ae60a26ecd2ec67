// Package ring provides a fixed-capacity FIFO buffer used by the activity
// feed, the local log store and the notice board.
package ring

import "sync"

// Buffer is a fixed-capacity, thread-safe ring buffer.
// When the buffer is full, the oldest item is evicted to make room for new entries.
// All methods are safe for concurrent use.
type Buffer[T any] struct {
	mu    sync.RWMutex
	items []T
	cap   int
	head  int // index of the oldest element
	count int // number of elements currently stored
}

// New creates a new Buffer with the given capacity.
// Capacity must be at least 1. A buffer with capacity=1 holds exactly 1 item.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		items: make([]T, capacity),
		cap:   capacity,
	}
}

// Add inserts an item into the buffer. If the buffer is full, the oldest
// item is overwritten and returned with evicted=true.
func (b *Buffer[T]) Add(item T) (old T, evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == b.cap {
		old = b.items[b.head]
		b.items[b.head] = item
		b.head = (b.head + 1) % b.cap
		return old, true
	}
	b.items[(b.head+b.count)%b.cap] = item
	b.count++
	return old, false
}

// List returns all items in insertion order (oldest first).
func (b *Buffer[T]) List() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.listLocked()
}

// Filter returns the items for which keep returns true, oldest first.
func (b *Buffer[T]) Filter(keep func(T) bool) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []T
	for i := 0; i < b.count; i++ {
		item := b.items[(b.head+i)%b.cap]
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// Last returns the newest item, if any.
func (b *Buffer[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	if b.count == 0 {
		return zero, false
	}
	return b.items[(b.head+b.count-1)%b.cap], true
}

// Len returns the number of items currently in the buffer.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the capacity of the buffer.
func (b *Buffer[T]) Cap() int {
	return b.cap
}

// Clear drops every item. Capacity is unchanged.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.count = 0
}

// listLocked returns all items in insertion order.
// Caller must hold at least a read lock.
func (b *Buffer[T]) listLocked() []T {
	if b.count == 0 {
		return nil
	}
	result := make([]T, b.count)
	for i := 0; i < b.count; i++ {
		result[i] = b.items[(b.head+i)%b.cap]
	}
	return result
}
