package manager

import (
	"task-tracker/internal/domain"
	"task-tracker/internal/validation"
)

// Op names the kind of change an Event reports.
type Op string

const (
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpDeleteAll Op = "delete_all"
	OpView      Op = "view"
)

// Event describes a committed change. ID is zero for bulk operations.
type Event struct {
	Op   Op
	Kind domain.Kind
	ID   domain.ID
}

// Observer is notified after every committed mutation and history change.
// It runs synchronously on the caller's goroutine, so it may read the store
// but must not mutate it.
type Observer interface {
	OnChange(store *Store, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(store *Store, ev Event)

// OnChange calls f(store, ev).
func (f ObserverFunc) OnChange(store *Store, ev Event) { f(store, ev) }

// Option configures a Store.
type Option func(*config)

type config struct {
	historyLimit int
	limits       validation.Limits
	observers    []Observer
}

// WithHistoryLimit caps the view history at n entries. Zero keeps it unbounded.
func WithHistoryLimit(n int) Option {
	return func(c *config) { c.historyLimit = n }
}

// WithLimits sets the validation limits applied before every mutation.
func WithLimits(limits validation.Limits) Option {
	return func(c *config) { c.limits = limits }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}
