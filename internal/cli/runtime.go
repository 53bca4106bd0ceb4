package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"task-tracker/internal/api"
	"task-tracker/internal/autosave"
	"task-tracker/internal/config"
	"task-tracker/internal/manager"
	"task-tracker/internal/persist"
	"task-tracker/internal/services"
)

// Runtime is a store opened from the configured backend, together with
// whatever keeps the backend up to date.
type Runtime struct {
	Config *config.Config
	Store  *manager.Synchronized
	API    api.TaskAPI

	backend      persist.Backend
	writeThrough *persist.WriteThrough
	autosave     *autosave.Job
}

// OpenRuntime loads the store from the configured backend. With useAutosave
// the store is saved on the autosave schedule, otherwise after every change.
func OpenRuntime(ctx context.Context, cfg *config.Config, useAutosave bool) (*Runtime, error) {
	backend, err := config.CreateBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := manager.New(
		manager.WithHistoryLimit(cfg.History.Limit),
		manager.WithLimits(cfg.Validation.Limits()),
	)
	if err := persist.Open(ctx, store, backend); err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	guarded := manager.NewSynchronized(store)
	rt := &Runtime{
		Config:  cfg,
		Store:   guarded,
		API:     api.New(guarded, services.NewTimeService(cfg.Display.TimeFormat)),
		backend: backend,
	}

	if useAutosave {
		job, err := autosave.New(guarded, backend, cfg.Autosave.Schedule, cfg.Storage.WriteTimeout)
		if err != nil {
			backend.Close()
			return nil, &config.ConfigError{Field: "autosave.schedule", Message: err.Error()}
		}
		store.AddObserver(job)
		job.Start()
		rt.autosave = job
	} else {
		rt.writeThrough = persist.NewWriteThrough(backend, cfg.Storage.WriteTimeout)
		store.AddObserver(rt.writeThrough)
	}

	return rt, nil
}

// Close flushes pending changes and releases the backend. A failed final
// write-through save is reported too.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.autosave != nil {
		errs = append(errs, r.autosave.Stop(ctx))
	}
	if r.writeThrough != nil {
		errs = append(errs, r.writeThrough.Err())
	}
	errs = append(errs, r.backend.Close())
	return stderrors.Join(errs...)
}
