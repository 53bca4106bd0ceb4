package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ID identifies a task, epic or subtask. All three kinds share one id space.
type ID int64

// String returns the decimal form of the id.
func (id ID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts the canonical upper-case names as well as lower-case
// and dashed spellings ("in-progress").
func ParseStatus(s string) (Status, error) {
	normalized := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !normalized.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return normalized, nil
}

// Kind tells which of the three entity maps an item lives in.
type Kind string

const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubtask Kind = "SUBTASK"
)

// Item is the read-only view shared by Task, Epic and Subtask.
type Item interface {
	ItemID() ID
	ItemKind() Kind
	// Span returns the start and end of the item; both are nil for undated items.
	Span() (start *time.Time, end *time.Time)
}

// Ref is a weak reference to an item by id and kind.
type Ref struct {
	ID   ID   `json:"id"`
	Kind Kind `json:"kind"`
}

// RefOf builds a Ref for the given item.
func RefOf(item Item) Ref {
	return Ref{ID: item.ItemID(), Kind: item.ItemKind()}
}

// SameItem reports whether a and b denote the same logical item.
func SameItem(a, b Item) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ItemID() == b.ItemID()
}

// Task represents a standalone work item.
// StartTime is optional; Duration is the planned length of the work.
type Task struct {
	ID          ID
	Name        string
	Description string
	Status      Status
	StartTime   *time.Time
	Duration    time.Duration
}

// NewTask creates a Task. The id is assigned by the store.
func NewTask(name, description string, status Status, start *time.Time, duration time.Duration) Task {
	return Task{
		Name:        name,
		Description: description,
		Status:      status,
		StartTime:   copyTime(start),
		Duration:    duration,
	}
}

// EndTime returns start + duration, or nil when the task has no start time.
func (t Task) EndTime() *time.Time {
	if t.StartTime == nil {
		return nil
	}
	end := t.StartTime.Add(t.Duration)
	return &end
}

// IsDated reports whether the task has a start time.
func (t Task) IsDated() bool {
	return t.StartTime != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.StartTime = copyTime(t.StartTime)
	return t
}

func (t Task) ItemID() ID     { return t.ID }
func (t Task) ItemKind() Kind { return KindTask }
func (t Task) Span() (*time.Time, *time.Time) {
	return copyTime(t.StartTime), t.EndTime()
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}

// Subtask is a work item owned by exactly one epic.
type Subtask struct {
	Task
	EpicID ID
}

// NewSubtask creates a Subtask belonging to epicID.
func NewSubtask(name, description string, status Status, start *time.Time, duration time.Duration, epicID ID) Subtask {
	return Subtask{
		Task:   NewTask(name, description, status, start, duration),
		EpicID: epicID,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s Subtask) Clone() Subtask {
	s.Task = s.Task.Clone()
	return s
}

func (s Subtask) ItemKind() Kind { return KindSubtask }

// Epic is a composite work item. Its status, start time, end time and duration
// are derived from its subtasks and are never set by callers.
type Epic struct {
	Task
	SubtaskIDs []ID
	End        *time.Time
}

// NewEpic creates an Epic with no subtasks.
func NewEpic(name, description string) Epic {
	return Epic{
		Task: Task{
			Name:        name,
			Description: description,
			Status:      StatusNew,
		},
	}
}

// EndTime returns the derived end of the latest dated subtask.
func (e Epic) EndTime() *time.Time {
	return copyTime(e.End)
}

// Clone returns a copy that shares no pointers or slices with e.
func (e Epic) Clone() Epic {
	e.Task = e.Task.Clone()
	e.SubtaskIDs = slices.Clone(e.SubtaskIDs)
	e.End = copyTime(e.End)
	return e
}

// HasSubtask reports whether id is in the epic's subtask list.
func (e Epic) HasSubtask(id ID) bool {
	return slices.Contains(e.SubtaskIDs, id)
}

func (e Epic) ItemKind() Kind { return KindEpic }
func (e Epic) Span() (*time.Time, *time.Time) {
	return copyTime(e.StartTime), e.EndTime()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
