// Package sqlite persists store snapshots in a SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Options tunes the repository.
type Options struct {
	QueryTimeout   time.Duration
	WriteTimeout   time.Duration
	DirPermissions os.FileMode
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		QueryTimeout:   10 * time.Second,
		WriteTimeout:   5 * time.Second,
		DirPermissions: 0755,
	}
}

// Repository stores whole snapshots: every Save replaces the previous
// contents in a single transaction.
type Repository struct {
	db     *sql.DB
	mapper *Mapper
	opts   Options
}

// New creates a new SQLite repository instance with default options
func New(dbPath string) (*Repository, error) {
	return NewWithOptions(dbPath, DefaultOptions())
}

// NewWithOptions opens (creating if needed) the database at dbPath and
// brings its schema up to date.
func NewWithOptions(dbPath string, opts Options) (*Repository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), opts.DirPermissions); err != nil {
			return nil, errors.NewDatabaseError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	logging.Debugf("sqlite: opened %s", dbPath)
	return &Repository{db: db, mapper: NewMapper(), opts: opts}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save replaces the stored snapshot with snap.
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	ctx, cancel := r.withTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin save", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"history", "subtasks", "tasks", "epics", "meta"} {
		if err := Execute(ctx, tx, "clear "+table, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, id := range domain.SortedIDs(snap.Epics) {
		row := r.mapper.EpicToRow(snap.Epics[id])
		err := Execute(ctx, tx, "insert epic", `
		INSERT INTO epics (id, name, description, status, start_time, end_time, duration_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.Name, row.Description, row.Status, row.StartTime, row.EndTime, row.DurationNanos)
		if err != nil {
			return err
		}
	}

	for _, id := range domain.SortedIDs(snap.Tasks) {
		row := r.mapper.TaskToRow(snap.Tasks[id])
		err := Execute(ctx, tx, "insert task", `
		INSERT INTO tasks (id, name, description, status, start_time, duration_nanos)
		VALUES (?, ?, ?, ?, ?, ?)`,
			row.ID, row.Name, row.Description, row.Status, row.StartTime, row.DurationNanos)
		if err != nil {
			return err
		}
	}

	positions := subtaskPositions(snap)
	for _, id := range domain.SortedIDs(snap.Subtasks) {
		row := r.mapper.SubtaskToRow(snap.Subtasks[id], positions[id])
		err := Execute(ctx, tx, "insert subtask", `
		INSERT INTO subtasks (id, epic_id, position, name, description, status, start_time, duration_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.EpicID, row.Position, row.Name, row.Description, row.Status, row.StartTime, row.DurationNanos)
		if err != nil {
			return err
		}
	}

	for i, ref := range snap.History {
		row := r.mapper.RefToRow(ref, i)
		err := Execute(ctx, tx, "insert history", `INSERT INTO history (position, item_id, kind) VALUES (?, ?, ?)`,
			row.Position, row.ItemID, row.Kind)
		if err != nil {
			return err
		}
	}

	err = Execute(ctx, tx, "save next id", `INSERT INTO meta (key, value) VALUES ('next_id', ?)`,
		strconv.FormatInt(int64(snap.NextID), 10))
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit save", err)
	}
	logging.Debugf("sqlite: saved %d tasks, %d epics, %d subtasks", len(snap.Tasks), len(snap.Epics), len(snap.Subtasks))
	return nil
}

// Load reads the stored snapshot. An empty database yields an empty snapshot.
func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	ctx, cancel := r.withTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	snap := domain.NewSnapshot()

	epicRows, err := QueryMultiple(ctx, r.db, `
	SELECT id, name, description, status, start_time, end_time, duration_nanos
	FROM epics ORDER BY id`, ScanAll(ScanEpic), "epics")
	if err != nil {
		return domain.Snapshot{}, err
	}
	for _, row := range epicRows {
		epic, err := r.mapper.EpicFromRow(*row)
		if err != nil {
			return domain.Snapshot{}, HandleDatabaseError("decode epic", err)
		}
		snap.Epics[epic.ID] = epic
	}

	taskRows, err := QueryMultiple(ctx, r.db, `
	SELECT id, name, description, status, start_time, duration_nanos
	FROM tasks ORDER BY id`, ScanAll(ScanTask), "tasks")
	if err != nil {
		return domain.Snapshot{}, err
	}
	for _, row := range taskRows {
		task, err := r.mapper.TaskFromRow(*row)
		if err != nil {
			return domain.Snapshot{}, HandleDatabaseError("decode task", err)
		}
		snap.Tasks[task.ID] = task
	}

	subtaskRows, err := QueryMultiple(ctx, r.db, `
	SELECT id, epic_id, position, name, description, status, start_time, duration_nanos
	FROM subtasks ORDER BY epic_id, position, id`, ScanAll(ScanSubtask), "subtasks")
	if err != nil {
		return domain.Snapshot{}, err
	}
	for _, row := range subtaskRows {
		sub, err := r.mapper.SubtaskFromRow(*row)
		if err != nil {
			return domain.Snapshot{}, HandleDatabaseError("decode subtask", err)
		}
		snap.Subtasks[sub.ID] = sub
		if epic, ok := snap.Epics[sub.EpicID]; ok {
			epic.SubtaskIDs = append(epic.SubtaskIDs, sub.ID)
			snap.Epics[sub.EpicID] = epic
		}
	}

	historyRows, err := QueryMultiple(ctx, r.db, `
	SELECT position, item_id, kind FROM history ORDER BY position`, ScanAll(ScanHistory), "history")
	if err != nil {
		return domain.Snapshot{}, err
	}
	for _, row := range historyRows {
		snap.History = append(snap.History, r.mapper.RefFromRow(*row))
	}

	nextID, err := QuerySingleValue[string](ctx, r.db, `SELECT value FROM meta WHERE key = 'next_id'`, "meta", "next_id")
	switch {
	case err == nil:
		n, perr := strconv.ParseInt(nextID, 10, 64)
		if perr != nil {
			return domain.Snapshot{}, HandleDatabaseError("decode next id", perr)
		}
		snap.NextID = domain.ID(n)
	case errors.IsErrorType(err, errors.ErrorTypeNotFound):
		snap.NextID = snap.MaxID() + 1
	default:
		return domain.Snapshot{}, err
	}

	return snap, nil
}

func (r *Repository) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// subtaskPositions maps each subtask id to its index in its epic's list.
// Subtasks missing from their epic's list are placed after the listed ones.
func subtaskPositions(snap domain.Snapshot) map[domain.ID]int {
	positions := make(map[domain.ID]int, len(snap.Subtasks))
	for _, epic := range snap.Epics {
		for i, id := range epic.SubtaskIDs {
			positions[id] = i
		}
	}
	var unlisted []domain.ID
	for id := range snap.Subtasks {
		if _, ok := positions[id]; !ok {
			unlisted = append(unlisted, id)
		}
	}
	slices.Sort(unlisted)
	for i, id := range unlisted {
		positions[id] = len(snap.Subtasks) + i
	}
	return positions
}
