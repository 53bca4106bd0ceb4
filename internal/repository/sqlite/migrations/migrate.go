// Package migrations keeps the SQLite schema of the snapshot store current.
// SQL steps are embedded from NNNNNN_name.up.sql / .down.sql pairs; steps
// that need Go register themselves with RegisterGoMigration.
package migrations

import (
	"cmp"
	"database/sql"
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"task-tracker/internal/logging"
)

//go:embed *.sql
var migrationsFS embed.FS

// Step changes the schema inside the migration transaction.
type Step func(tx *sql.Tx) error

// Migration is one numbered schema change.
type Migration struct {
	Version int
	Name    string
	Up      Step
	Down    Step
}

var registered = map[int]Migration{}

// RegisterGoMigration adds a migration written in Go. It is called from init
// functions, so a duplicate version panics at startup.
func RegisterGoMigration(version int, name string, up, down Step) {
	if _, exists := registered[version]; exists {
		panic(fmt.Sprintf("migration %d registered twice", version))
	}
	registered[version] = Migration{Version: version, Name: name, Up: up, Down: down}
}

// RunMigrations applies every pending migration in version order, each in
// its own transaction.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	all, err := Available()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := AppliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	log := logging.Component("sqlite")
	for _, m := range all {
		if slices.Contains(applied, m.Version) {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}
	return nil
}

// Available returns the embedded and registered migrations sorted by version.
func Available() ([]Migration, error) {
	byVersion := maps.Clone(registered)

	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok {
			continue
		}
		m, err := loadSQL(base)
		if err != nil {
			return nil, err
		}
		if _, clash := byVersion[m.Version]; clash {
			return nil, fmt.Errorf("migration %d is defined twice", m.Version)
		}
		byVersion[m.Version] = m
	}

	return slices.SortedFunc(maps.Values(byVersion), func(a, b Migration) int {
		return cmp.Compare(a.Version, b.Version)
	}), nil
}

// AppliedVersions returns the versions recorded in schema_migrations, ascending.
func AppliedVersions(db *sql.DB) ([]int, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// loadSQL reads the up/down pair named NNNNNN_name.
func loadSQL(base string) (Migration, error) {
	var version int
	if _, err := fmt.Sscanf(base, "%d_", &version); err != nil || version <= 0 {
		return Migration{}, fmt.Errorf("migration file %q has no version prefix", base)
	}
	up, err := migrationsFS.ReadFile(base + ".up.sql")
	if err != nil {
		return Migration{}, err
	}
	down, err := migrationsFS.ReadFile(base + ".down.sql")
	if err != nil {
		return Migration{}, err
	}
	_, name, _ := strings.Cut(base, "_")
	return Migration{Version: version, Name: name, Up: execSQL(string(up)), Down: execSQL(string(down))}, nil
}

func execSQL(script string) Step {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec(script)
		return err
	}
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
