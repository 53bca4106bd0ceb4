// Package persist connects a manager.Store to a storage backend.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"
	"task-tracker/internal/manager"
)

// Backend stores and loads whole snapshots.
type Backend interface {
	Save(ctx context.Context, snap domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, error)
	Close() error
}

// Open restores store from backend, history included. An empty backend
// leaves store empty.
func Open(ctx context.Context, store *manager.Store, backend Backend) error {
	snap, err := backend.Load(ctx)
	if err != nil {
		return err
	}
	if err := store.Restore(snap, manager.ReplayHistory()); err != nil {
		return err
	}
	logging.Debugf("persist: opened store with next id %d", store.NextID())
	return nil
}

// Memory is a Backend that keeps the last saved snapshot in memory.
type Memory struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	saves int
}

// NewMemory creates an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{snap: domain.NewSnapshot()}
}

// Save keeps a deep copy of snap.
func (m *Memory) Save(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	m.saves++
	return nil
}

// Load returns a deep copy of the last saved snapshot.
func (m *Memory) Load(_ context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// WriteThrough is a manager.Observer that saves the whole store after every
// change, views included since they move the history. Save errors are logged
// and kept; they never fail the store operation that triggered them.
type WriteThrough struct {
	backend Backend
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	lastErr error
}

// NewWriteThrough creates a WriteThrough saving to backend, giving each save
// at most timeout (zero means no limit).
func NewWriteThrough(backend Backend, timeout time.Duration) *WriteThrough {
	return &WriteThrough{
		backend: backend,
		timeout: timeout,
		log:     logging.Component("persist"),
	}
}

// OnChange implements manager.Observer.
func (w *WriteThrough) OnChange(store *manager.Store, ev manager.Event) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	err := w.backend.Save(ctx, store.Snapshot())

	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		w.log.Error().Err(err).
			Str("op", string(ev.Op)).
			Str("kind", string(ev.Kind)).
			Int64("id", int64(ev.ID)).
			Msg("write-through save failed")
	}
}

// Err returns the error of the most recent save, nil if it succeeded.
func (w *WriteThrough) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}
