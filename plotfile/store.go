// SPDX-License-Identifier: MIT

// Package plotfile persists integrator snapshots in a SQLite database.
//
// One database holds many runs. Every Store opened for writing starts a
// new run with a random UUID; snapshots written through it (WritePlot,
// the integrator.PlotWriter hook) are attached to that run. A snapshot is
// stored in one transaction as a plots row, one levels row per level and
// one patches row per box, the valid data of every field of a box packed
// with msgpack.
//
// Errors:
//
//   - ErrNotFound:      no run or snapshot with the requested key.
//   - ErrSchemaVersion: the database was written by a newer schema.
//   - ErrCorrupt:       a stored payload does not match its metadata.
package plotfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound indicates a missing run or snapshot.
	ErrNotFound = errors.New("plotfile: not found")

	// ErrSchemaVersion indicates a database newer than this package.
	ErrSchemaVersion = errors.New("plotfile: unsupported schema version")

	// ErrCorrupt indicates a payload inconsistent with its metadata.
	ErrCorrupt = errors.New("plotfile: corrupt payload")
)

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	label       TEXT NOT NULL,
	started_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS plots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	step          INTEGER NOT NULL,
	time          REAL NOT NULL,
	finest_level  INTEGER NOT NULL,
	ref_ratio     INTEGER NOT NULL,
	fields        BLOB NOT NULL,
	UNIQUE(run_id, name)
);

CREATE TABLE IF NOT EXISTS levels (
	plot_id   INTEGER NOT NULL REFERENCES plots(id) ON DELETE CASCADE,
	level     INTEGER NOT NULL,
	step      INTEGER NOT NULL,
	time      REAL NOT NULL,
	dom_lo_i  INTEGER NOT NULL,
	dom_lo_j  INTEGER NOT NULL,
	dom_hi_i  INTEGER NOT NULL,
	dom_hi_j  INTEGER NOT NULL,
	prob_lo_x REAL NOT NULL,
	prob_lo_y REAL NOT NULL,
	prob_hi_x REAL NOT NULL,
	prob_hi_y REAL NOT NULL,
	PRIMARY KEY (plot_id, level)
);

CREATE TABLE IF NOT EXISTS patches (
	plot_id  INTEGER NOT NULL REFERENCES plots(id) ON DELETE CASCADE,
	level    INTEGER NOT NULL,
	box      INTEGER NOT NULL,
	lo_i     INTEGER NOT NULL,
	lo_j     INTEGER NOT NULL,
	hi_i     INTEGER NOT NULL,
	hi_j     INTEGER NOT NULL,
	data     BLOB NOT NULL,
	PRIMARY KEY (plot_id, level, box)
);

CREATE INDEX IF NOT EXISTS idx_plots_run_step ON plots(run_id, step);
`

// Store is a snapshot database bound to one run.
type Store struct {
	db    *sql.DB
	run   uuid.UUID
	label string
}

// Run describes one stored run.
type Run struct {
	ID        uuid.UUID
	Label     string
	StartedAt string
	Plots     int
}

// Open opens (or creates) the database at path and starts a new run
// called label. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path, label string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open plot db: %w", err)
	}
	// One connection: pragmas and :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, run: uuid.New(), label: label}
	if _, err := db.ExecContext(ctx, "INSERT INTO runs (id, label) VALUES (?, ?)", s.run.String(), label); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s, nil
}

// migrate creates the schema on a fresh database and rejects newer ones.
func migrate(ctx context.Context, db *sql.DB) error {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_meta'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}
	if count > 0 {
		var ver int
		err := db.QueryRowContext(ctx, "SELECT version FROM schema_meta LIMIT 1").Scan(&ver)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("read schema version: %w", err)
		case ver > schemaVersion:
			return fmt.Errorf("database version %d > %d: %w", ver, schemaVersion, ErrSchemaVersion)
		default:
			return nil
		}
	}

	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO schema_meta (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("insert schema version: %w", err)
	}
	return nil
}

// RunID returns the id of the run this Store writes to.
func (s *Store) RunID() uuid.UUID { return s.run }

// Label returns the label of the current run.
func (s *Store) Label() string { return s.label }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs lists every run in the database, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.label, r.started_at, COUNT(p.id)
		FROM runs r LEFT JOIN plots p ON p.run_id = r.id
		GROUP BY r.id
		ORDER BY r.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var id string
		if err := rows.Scan(&id, &r.Label, &r.StartedAt, &r.Plots); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %v: %w", id, err, ErrCorrupt)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
