// Package history records which items were viewed, in access order.
//
// The tracker is an ordered map: a hash index over a doubly linked list, the
// same shape as an LRU cache. Touch and Remove are O(1). Order runs from the
// least recently viewed entry (index 0) to the most recent (last index).
package history

import (
	"github.com/elliotchance/orderedmap/v3"
)

// Tracker is an access-ordered, deduplicated sequence of values indexed by key.
// It is not safe for concurrent use.
type Tracker[K comparable, V any] struct {
	entries *orderedmap.OrderedMap[K, V]
	limit   int
}

// Option configures a Tracker.
type Option func(*options)

type options struct {
	limit int
}

// WithLimit caps the tracker at n entries, evicting the least recent on
// overflow. Zero or a negative n means unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = max(n, 0)
	}
}

// New creates an empty tracker.
func New[K comparable, V any](opts ...Option) *Tracker[K, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker[K, V]{
		entries: orderedmap.NewOrderedMap[K, V](),
		limit:   o.limit,
	}
}

// Touch moves key to the most recent position, inserting it if absent. The
// stored value is replaced by value. Other entries keep their relative order.
func (t *Tracker[K, V]) Touch(key K, value V) {
	t.entries.Delete(key)
	t.entries.Set(key, value)
	if t.limit > 0 && t.entries.Len() > t.limit {
		if oldest := t.entries.Front(); oldest != nil {
			t.entries.Delete(oldest.Key)
		}
	}
}

// Remove deletes key and reports whether it was present. Removing an absent
// key is a no-op.
func (t *Tracker[K, V]) Remove(key K) bool {
	return t.entries.Delete(key)
}

// RemoveFunc deletes every entry for which match returns true.
func (t *Tracker[K, V]) RemoveFunc(match func(K, V) bool) int {
	var doomed []K
	for el := t.entries.Front(); el != nil; el = el.Next() {
		if match(el.Key, el.Value) {
			doomed = append(doomed, el.Key)
		}
	}
	for _, key := range doomed {
		t.entries.Delete(key)
	}
	return len(doomed)
}

// Contains reports whether key is tracked.
func (t *Tracker[K, V]) Contains(key K) bool {
	_, ok := t.entries.Get(key)
	return ok
}

// Len returns the number of tracked entries.
func (t *Tracker[K, V]) Len() int {
	return t.entries.Len()
}

// Limit returns the configured cap, 0 when unbounded.
func (t *Tracker[K, V]) Limit() int {
	return t.limit
}

// Clear empties the tracker.
func (t *Tracker[K, V]) Clear() {
	t.entries = orderedmap.NewOrderedMap[K, V]()
}

// Snapshot returns the values from least to most recent. The slice is a copy;
// later changes to the tracker do not affect it.
func (t *Tracker[K, V]) Snapshot() []V {
	out := make([]V, 0, t.entries.Len())
	for el := t.entries.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Keys returns the keys from least to most recent.
func (t *Tracker[K, V]) Keys() []K {
	out := make([]K, 0, t.entries.Len())
	for el := t.entries.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}
