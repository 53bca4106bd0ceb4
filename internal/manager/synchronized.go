package manager

import (
	"sync"

	"task-tracker/internal/domain"
)

// Synchronized serialises access to a Store for adapters that serve several
// goroutines, such as the HTTP server and the autosave job.
type Synchronized struct {
	mu    sync.Mutex
	store *Store
}

// NewSynchronized wraps store. The caller must stop using store directly.
func NewSynchronized(store *Store) *Synchronized {
	return &Synchronized{store: store}
}

// Do runs fn with exclusive access to the store. fn must not keep the store
// after it returns.
func (s *Synchronized) Do(fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Snapshot returns a detached copy of the store.
func (s *Synchronized) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Restore replaces the store's contents with snap.
func (s *Synchronized) Restore(snap domain.Snapshot, opts ...RestoreOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Restore(snap, opts...)
}
