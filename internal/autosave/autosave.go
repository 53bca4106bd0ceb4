// Package autosave periodically writes a shared store to a backend on a
// cron schedule.
package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"task-tracker/internal/logging"
	"task-tracker/internal/manager"
	"task-tracker/internal/persist"
)

// Job saves the store whenever it changed since the last save. Register it
// as an observer of the store so it can tell.
type Job struct {
	store   *manager.Synchronized
	backend persist.Backend
	timeout time.Duration
	cron    *cron.Cron
	log     zerolog.Logger

	dirty atomic.Bool

	mu      sync.Mutex
	saves   int
	lastErr error
}

// New creates a Job running on schedule, a standard five-field cron
// expression or a descriptor such as "@every 1m".
func New(store *manager.Synchronized, backend persist.Backend, schedule string, timeout time.Duration) (*Job, error) {
	j := &Job{
		store:   store,
		backend: backend,
		timeout: timeout,
		cron:    cron.New(),
		log:     logging.Component("autosave"),
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, err
	}
	return j, nil
}

// OnChange implements manager.Observer.
func (j *Job) OnChange(_ *manager.Store, _ manager.Event) {
	j.dirty.Store(true)
}

// Start runs the schedule in the background.
func (j *Job) Start() {
	j.log.Info().Msg("autosave started")
	j.cron.Start()
}

// Stop halts the schedule, waits for a running save and then saves once more
// if anything is still pending.
func (j *Job) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	_, err := j.SaveIfDirty(ctx)
	j.log.Info().Int("saves", j.Saves()).Msg("autosave stopped")
	return err
}

// SaveIfDirty saves when the store changed since the last save and reports
// whether it did.
func (j *Job) SaveIfDirty(ctx context.Context) (bool, error) {
	if !j.dirty.Swap(false) {
		return false, nil
	}
	if err := j.SaveNow(ctx); err != nil {
		j.dirty.Store(true)
		return false, err
	}
	return true, nil
}

// SaveNow saves the store unconditionally.
func (j *Job) SaveNow(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	err := j.backend.Save(ctx, j.store.Snapshot())

	j.mu.Lock()
	j.lastErr = err
	if err == nil {
		j.saves++
	}
	j.mu.Unlock()
	return err
}

// Saves reports how many saves succeeded.
func (j *Job) Saves() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.saves
}

// Err returns the error of the most recent save attempt.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastErr
}

func (j *Job) run() {
	saved, err := j.SaveIfDirty(context.Background())
	if err != nil {
		j.log.Error().Err(err).Msg("autosave failed")
		return
	}
	if saved {
		j.log.Debug().Msg("autosaved")
	}
}
