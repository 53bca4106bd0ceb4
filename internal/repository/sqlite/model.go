package sqlite

import "database/sql"

// TaskRow mirrors a row of the tasks table
type TaskRow struct {
	ID            int64
	Name          string
	Description   string
	Status        string
	StartTime     sql.NullString
	DurationNanos int64
}

// EpicRow mirrors a row of the epics table. The derived columns are written
// for readers of the database; Load recomputes them from subtasks.
type EpicRow struct {
	ID            int64
	Name          string
	Description   string
	Status        string
	StartTime     sql.NullString
	EndTime       sql.NullString
	DurationNanos int64
}

// SubtaskRow mirrors a row of the subtasks table. Position keeps the order of
// subtasks within their epic.
type SubtaskRow struct {
	TaskRow
	EpicID   int64
	Position int
}

// HistoryRow mirrors a row of the history table, position 0 being least recent
type HistoryRow struct {
	Position int
	ItemID   int64
	Kind     string
}
