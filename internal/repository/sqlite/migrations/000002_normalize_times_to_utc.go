package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/logging"
)

func init() {
	RegisterGoMigration(2, "normalize_times_to_utc", Up_000002_normalize_times_to_utc, Down_000002_normalize_times_to_utc)
}

// timeColumns lists every column holding a timestamp.
var timeColumns = []struct{ table, column string }{
	{"tasks", "start_time"},
	{"subtasks", "start_time"},
	{"epics", "start_time"},
	{"epics", "end_time"},
}

// Up_000002_normalize_times_to_utc rewrites every stored timestamp as RFC3339
// in UTC. Rows written with a local offset, or with Go's default
// time.String() layout, sort inconsistently as text otherwise.
func Up_000002_normalize_times_to_utc(tx *sql.Tx) error {
	for _, col := range timeColumns {
		updated, skipped, err := normalizeColumn(tx, col.table, col.column)
		if err != nil {
			return err
		}
		logging.Debugf("migration 2: %s.%s updated %d, skipped %d", col.table, col.column, updated, skipped)
	}
	return nil
}

// Down_000002_normalize_times_to_utc is a no-op: UTC RFC3339 values are
// valid input for every earlier schema version.
func Down_000002_normalize_times_to_utc(tx *sql.Tx) error {
	return nil
}

func normalizeColumn(tx *sql.Tx, table, column string) (updated, skipped int, err error) {
	type row struct {
		id    int64
		value string
	}
	var pending []row

	// Read all rows into memory first to avoid locking issues
	rows, err := tx.Query(fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IS NOT NULL AND %s != ''", column, table, column, column))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query %s.%s: %w", table, column, err)
	}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.value); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, 0, fmt.Errorf("error iterating %s: %w", table, err)
	}
	rows.Close()

	stmt, err := tx.Prepare(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare %s.%s update: %w", table, column, err)
	}
	defer stmt.Close()

	for _, r := range pending {
		normalized, err := parseToUTC(r.value)
		if err != nil {
			logging.Debugf("migration 2: leaving %s %d untouched: %v", table, r.id, err)
			skipped++
			continue
		}
		if normalized == r.value {
			continue
		}
		if _, err := stmt.Exec(normalized, r.id); err != nil {
			return updated, skipped, fmt.Errorf("failed to update %s %d: %w", table, r.id, err)
		}
		updated++
	}
	return updated, skipped, nil
}

// parseToUTC accepts RFC3339 and the layouts produced by time.Time.String
// and returns the instant as RFC3339 in UTC, keeping sub-second digits.
func parseToUTC(value string) (string, error) {
	// Strip monotonic clock suffix if present
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999 -0700",
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
	}
	return "", fmt.Errorf("could not parse time format: %s", value)
}
