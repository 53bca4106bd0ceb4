package services

import (
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/schedule"
)

// TimeRange represents a time period with start and end times
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// KindSummary counts the items of one kind by status
type KindSummary struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"by_status"`
}

// Summary is an overview of everything in a store
type Summary struct {
	Tasks    KindSummary `json:"tasks"`
	Epics    KindSummary `json:"epics"`
	Subtasks KindSummary `json:"subtasks"`

	// Scheduled and Unscheduled count tasks and subtasks with and without a start time.
	Scheduled   int           `json:"scheduled"`
	Unscheduled int           `json:"unscheduled"`
	Planned     time.Duration `json:"planned"`

	FirstStart *time.Time `json:"first_start,omitempty"`
	LastEnd    *time.Time `json:"last_end,omitempty"`

	// Next is the first scheduled item starting at or after the reference time.
	Next      *domain.Ref `json:"next,omitempty"`
	NextStart *time.Time  `json:"next_start,omitempty"`

	HistoryLength int `json:"history_length"`
}

// TimeService handles parsing and formatting of times and durations
type TimeService interface {
	// ParseStartTime reads a user supplied start time. An empty string means no start time.
	ParseStartTime(input string) (*time.Time, error)
	// ParseDuration reads shorthand such as "90", "1h30m" or "2d".
	ParseDuration(input string) (time.Duration, error)

	FormatDuration(d time.Duration) string
	FormatTime(t *time.Time, relative bool) string

	Now() time.Time
	DayRange(date time.Time) TimeRange
}

// ReportingService derives read-only reports from store contents
type ReportingService interface {
	Summarize(snap domain.Snapshot, now time.Time) *Summary
	// Upcoming returns at most limit items, in order, that start at or after now.
	Upcoming(prioritized []domain.Item, now time.Time, limit int) []domain.Item
	// FreeSlots returns the gaps inside window not covered by any item.
	FreeSlots(prioritized []domain.Item, window schedule.Interval) []schedule.Interval
}
