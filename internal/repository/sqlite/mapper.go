package sqlite

import (
	"fmt"
	"time"

	"task-tracker/internal/domain"
)

// Mapper converts between domain values and table rows.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// TaskToRow converts a domain Task to a tasks row.
func (m *Mapper) TaskToRow(t domain.Task) TaskRow {
	return TaskRow{
		ID:            int64(t.ID),
		Name:          t.Name,
		Description:   t.Description,
		Status:        string(t.Status),
		StartTime:     FormatTimePtrForDB(t.StartTime),
		DurationNanos: int64(t.Duration),
	}
}

// TaskFromRow converts a tasks row to a domain Task.
func (m *Mapper) TaskFromRow(r TaskRow) (domain.Task, error) {
	start, err := ParseNullTimeFromDB(r.StartTime)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %d start time: %w", r.ID, err)
	}
	return domain.Task{
		ID:          domain.ID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		StartTime:   start,
		Duration:    time.Duration(r.DurationNanos),
	}, nil
}

// EpicToRow converts a domain Epic, including its derived fields, to an epics row.
func (m *Mapper) EpicToRow(e domain.Epic) EpicRow {
	return EpicRow{
		ID:            int64(e.ID),
		Name:          e.Name,
		Description:   e.Description,
		Status:        string(e.Status),
		StartTime:     FormatTimePtrForDB(e.StartTime),
		EndTime:       FormatTimePtrForDB(e.End),
		DurationNanos: int64(e.Duration),
	}
}

// EpicFromRow converts an epics row to a domain Epic without subtask ids.
func (m *Mapper) EpicFromRow(r EpicRow) (domain.Epic, error) {
	start, err := ParseNullTimeFromDB(r.StartTime)
	if err != nil {
		return domain.Epic{}, fmt.Errorf("epic %d start time: %w", r.ID, err)
	}
	end, err := ParseNullTimeFromDB(r.EndTime)
	if err != nil {
		return domain.Epic{}, fmt.Errorf("epic %d end time: %w", r.ID, err)
	}
	epic := domain.NewEpic(r.Name, r.Description)
	epic.ID = domain.ID(r.ID)
	epic.Status = domain.Status(r.Status)
	epic.StartTime = start
	epic.End = end
	epic.Duration = time.Duration(r.DurationNanos)
	return epic, nil
}

// SubtaskToRow converts a domain Subtask at the given position within its epic.
func (m *Mapper) SubtaskToRow(s domain.Subtask, position int) SubtaskRow {
	return SubtaskRow{
		TaskRow:  m.TaskToRow(s.Task),
		EpicID:   int64(s.EpicID),
		Position: position,
	}
}

// SubtaskFromRow converts a subtasks row to a domain Subtask.
func (m *Mapper) SubtaskFromRow(r SubtaskRow) (domain.Subtask, error) {
	task, err := m.TaskFromRow(r.TaskRow)
	if err != nil {
		return domain.Subtask{}, err
	}
	return domain.Subtask{Task: task, EpicID: domain.ID(r.EpicID)}, nil
}

// RefToRow converts a history reference at the given position.
func (m *Mapper) RefToRow(ref domain.Ref, position int) HistoryRow {
	return HistoryRow{Position: position, ItemID: int64(ref.ID), Kind: string(ref.Kind)}
}

// RefFromRow converts a history row to a reference.
func (m *Mapper) RefFromRow(r HistoryRow) domain.Ref {
	return domain.Ref{ID: domain.ID(r.ItemID), Kind: domain.Kind(r.Kind)}
}
