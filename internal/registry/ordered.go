// Package registry provides the thread-safe, duplicate-free, insertion
// ordered listener set used for both event categories of the pose cache.
package registry

import (
	"sync"
	"sync/atomic"
)

// Ordered is an insertion-ordered set of comparable values.
//
// Writers serialise on a mutex and publish a fresh slice on every change;
// readers take the published slice without locking. A dispatch loop that
// calls Items therefore sees either the whole set before a mutation or the
// whole set after it, never a slice being resized underneath it.
type Ordered[T comparable] struct {
	mu    sync.Mutex
	items atomic.Pointer[[]T]
}

// Add appends v, first removing any entry equal to v, so a value present
// already moves to the back. The zero value (nil for interface types) is
// ignored.
func (o *Ordered[T]) Add(v T) {
	var zero T
	if v == zero {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	cur := o.load()
	next := make([]T, 0, len(cur)+1)
	for _, item := range cur {
		if item != v {
			next = append(next, item)
		}
	}
	next = append(next, v)
	o.items.Store(&next)
}

// Remove deletes every entry equal to v. Removing an absent value or the zero
// value is a no-op.
func (o *Ordered[T]) Remove(v T) {
	var zero T
	if v == zero {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	cur := o.load()
	found := false
	for _, item := range cur {
		if item == v {
			found = true
			break
		}
	}
	if !found {
		return
	}
	next := make([]T, 0, len(cur))
	for _, item := range cur {
		if item != v {
			next = append(next, item)
		}
	}
	o.items.Store(&next)
}

// Items returns the current entries in registration order. The returned
// slice is shared and must not be modified.
func (o *Ordered[T]) Items() []T {
	return o.load()
}

// Len returns the number of entries.
func (o *Ordered[T]) Len() int {
	return len(o.load())
}

func (o *Ordered[T]) load() []T {
	if p := o.items.Load(); p != nil {
		return *p
	}
	return nil
}
