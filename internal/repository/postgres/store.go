// Package postgres persists store snapshots in PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

// Store is a PostgreSQL-backed snapshot store.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// Connect opens a pool for dsn and makes sure the tables exist.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperrors.NewDatabaseError("connect postgres", err)
	}
	s := NewStore(pool, timeout)
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewStore creates a Store on an existing pool.
func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{pool: pool, timeout: timeout}
}

// EnsureTables creates the tm_* tables if they don't exist. Times are kept as
// Unix nanoseconds since TIMESTAMPTZ stops at microseconds.
func (s *Store) EnsureTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tm_epics (
			id               BIGINT PRIMARY KEY,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			start_unix_nano  BIGINT,
			end_unix_nano    BIGINT,
			duration_nanos   BIGINT NOT NULL DEFAULT 0,
			subtask_ids      BIGINT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS tm_tasks (
			id               BIGINT PRIMARY KEY,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			start_unix_nano  BIGINT,
			duration_nanos   BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tm_subtasks (
			id               BIGINT PRIMARY KEY,
			epic_id          BIGINT NOT NULL REFERENCES tm_epics(id) ON DELETE CASCADE,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			start_unix_nano  BIGINT,
			duration_nanos   BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tm_history (
			position INTEGER PRIMARY KEY,
			item_id  BIGINT NOT NULL,
			kind     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tm_meta (
			key   TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return apperrors.NewDatabaseError("ensure tables", err)
		}
	}
	return nil
}

// Save replaces the stored snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewDatabaseError("begin save", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`TRUNCATE tm_history, tm_subtasks, tm_tasks, tm_epics, tm_meta`)

	for _, id := range domain.SortedIDs(snap.Epics) {
		e := snap.Epics[id]
		batch.Queue(`
			INSERT INTO tm_epics (id, name, description, status, start_unix_nano, end_unix_nano, duration_nanos, subtask_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			int64(e.ID), e.Name, e.Description, string(e.Status), unixNano(e.StartTime), unixNano(e.End), int64(e.Duration), toInt64s(e.SubtaskIDs))
	}
	for _, id := range domain.SortedIDs(snap.Tasks) {
		t := snap.Tasks[id]
		batch.Queue(`
			INSERT INTO tm_tasks (id, name, description, status, start_unix_nano, duration_nanos)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			int64(t.ID), t.Name, t.Description, string(t.Status), unixNano(t.StartTime), int64(t.Duration))
	}
	for _, id := range domain.SortedIDs(snap.Subtasks) {
		st := snap.Subtasks[id]
		batch.Queue(`
			INSERT INTO tm_subtasks (id, epic_id, name, description, status, start_unix_nano, duration_nanos)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			int64(st.ID), int64(st.EpicID), st.Name, st.Description, string(st.Status), unixNano(st.StartTime), int64(st.Duration))
	}
	for i, ref := range snap.History {
		batch.Queue(`INSERT INTO tm_history (position, item_id, kind) VALUES ($1, $2, $3)`,
			i, int64(ref.ID), string(ref.Kind))
	}
	batch.Queue(`INSERT INTO tm_meta (key, value) VALUES ('next_id', $1)`, int64(snap.NextID))

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewDatabaseError("save snapshot", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewDatabaseError("commit save", err)
	}
	logging.Debugf("postgres: saved snapshot, next id %d", snap.NextID)
	return nil
}

// Load reads the stored snapshot.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap := domain.NewSnapshot()

	rows, _ := s.pool.Query(ctx, `
		SELECT id, name, description, status, start_unix_nano, end_unix_nano, duration_nanos, subtask_ids
		FROM tm_epics ORDER BY id`)
	epics, err := pgx.CollectRows(rows, scanEpic)
	if err != nil {
		return domain.Snapshot{}, apperrors.NewDatabaseError("load epics", err)
	}
	for _, e := range epics {
		snap.Epics[e.ID] = e
	}

	rows, _ = s.pool.Query(ctx, `
		SELECT id, name, description, status, start_unix_nano, duration_nanos
		FROM tm_tasks ORDER BY id`)
	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return domain.Snapshot{}, apperrors.NewDatabaseError("load tasks", err)
	}
	for _, t := range tasks {
		snap.Tasks[t.ID] = t
	}

	rows, _ = s.pool.Query(ctx, `
		SELECT id, epic_id, name, description, status, start_unix_nano, duration_nanos
		FROM tm_subtasks ORDER BY id`)
	subtasks, err := pgx.CollectRows(rows, scanSubtask)
	if err != nil {
		return domain.Snapshot{}, apperrors.NewDatabaseError("load subtasks", err)
	}
	for _, st := range subtasks {
		snap.Subtasks[st.ID] = st
	}

	rows, _ = s.pool.Query(ctx, `SELECT item_id, kind FROM tm_history ORDER BY position`)
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ref, error) {
		var id int64
		var kind string
		err := row.Scan(&id, &kind)
		return domain.Ref{ID: domain.ID(id), Kind: domain.Kind(kind)}, err
	})
	if err != nil {
		return domain.Snapshot{}, apperrors.NewDatabaseError("load history", err)
	}
	snap.History = history

	var nextID int64
	err = s.pool.QueryRow(ctx, `SELECT value FROM tm_meta WHERE key = 'next_id'`).Scan(&nextID)
	switch {
	case err == nil:
		snap.NextID = domain.ID(nextID)
	case errors.Is(err, pgx.ErrNoRows):
		snap.NextID = snap.MaxID() + 1
	default:
		return domain.Snapshot{}, apperrors.NewDatabaseError("load next id", err)
	}

	return snap, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func scanTask(row pgx.CollectableRow) (domain.Task, error) {
	var (
		t      domain.Task
		id     int64
		nanos  int64
		start  *int64
		status string
	)
	err := row.Scan(&id, &t.Name, &t.Description, &status, &start, &nanos)
	t.ID = domain.ID(id)
	t.Status = domain.Status(status)
	t.StartTime = fromUnixNano(start)
	t.Duration = time.Duration(nanos)
	return t, err
}

func scanSubtask(row pgx.CollectableRow) (domain.Subtask, error) {
	var (
		st     domain.Subtask
		id     int64
		epicID int64
		nanos  int64
		start  *int64
		status string
	)
	err := row.Scan(&id, &epicID, &st.Name, &st.Description, &status, &start, &nanos)
	st.ID = domain.ID(id)
	st.Status = domain.Status(status)
	st.EpicID = domain.ID(epicID)
	st.StartTime = fromUnixNano(start)
	st.Duration = time.Duration(nanos)
	return st, err
}

func scanEpic(row pgx.CollectableRow) (domain.Epic, error) {
	var (
		e          domain.Epic
		id         int64
		nanos      int64
		start, end *int64
		subtaskIDs []int64
		status     string
	)
	err := row.Scan(&id, &e.Name, &e.Description, &status, &start, &end, &nanos, &subtaskIDs)
	e.ID = domain.ID(id)
	e.Status = domain.Status(status)
	e.StartTime = fromUnixNano(start)
	e.End = fromUnixNano(end)
	e.Duration = time.Duration(nanos)
	e.SubtaskIDs = fromInt64s(subtaskIDs)
	return e, err
}

func unixNano(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	n := t.UnixNano()
	return &n
}

func fromUnixNano(n *int64) *time.Time {
	if n == nil {
		return nil
	}
	t := time.Unix(0, *n).UTC()
	return &t
}

func toInt64s(ids []domain.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func fromInt64s(ids []int64) []domain.ID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]domain.ID, len(ids))
	for i, id := range ids {
		out[i] = domain.ID(id)
	}
	return out
}
