// Package store persists the run manifest: one checkpoint row per completed
// pipeline stage, kept in a SQLite file next to the stage tables. Stages
// consult it to refuse running before their upstream checkpoint exists, and
// the status command reports it.
package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Checkpoint records one completed stage.
type Checkpoint struct {
	Stage       string
	RunID       string
	Output      string
	Rows        int
	CompletedAt time.Time
}

// Manifest is the SQLite-backed checkpoint store.
type Manifest struct {
	db *sql.DB
}

// Open opens (creating if needed) the manifest database under dataDir and
// configures WAL mode.
func Open(dataDir string) (*Manifest, error) {
	dsn := filepath.Join(dataDir, "manifest.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open manifest")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Manifest{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS checkpoints (
	stage        TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	output       TEXT NOT NULL,
	rows         INTEGER NOT NULL,
	completed_at DATETIME NOT NULL
);
`

// Migrate creates the checkpoint table.
func (m *Manifest) Migrate(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Record upserts the checkpoint for a completed stage and returns its run id.
func (m *Manifest) Record(ctx context.Context, stage, output string, rows int) (string, error) {
	runID := uuid.New().String()
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO checkpoints (stage, run_id, output, rows, completed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(stage) DO UPDATE SET
		   run_id = excluded.run_id,
		   output = excluded.output,
		   rows = excluded.rows,
		   completed_at = excluded.completed_at`,
		stage, runID, output, rows, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "store: record checkpoint %s", stage)
	}
	return runID, nil
}

// Get returns the checkpoint for a stage, or nil when the stage has not
// completed yet.
func (m *Manifest) Get(ctx context.Context, stage string) (*Checkpoint, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT stage, run_id, output, rows, completed_at FROM checkpoints WHERE stage = ?`,
		stage,
	)
	var cp Checkpoint
	err := row.Scan(&cp.Stage, &cp.RunID, &cp.Output, &cp.Rows, &cp.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get checkpoint %s", stage)
	}
	return &cp, nil
}

// Require returns the checkpoint for an upstream stage, failing with a
// resumability hint when it is missing.
func (m *Manifest) Require(ctx context.Context, stage string) (*Checkpoint, error) {
	cp, err := m.Get(ctx, stage)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, eris.Errorf("store: stage %q has no checkpoint; run the %s command first", stage, stage)
	}
	return cp, nil
}

// List returns all checkpoints ordered by completion time.
func (m *Manifest) List(ctx context.Context) ([]Checkpoint, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT stage, run_id, output, rows, completed_at FROM checkpoints ORDER BY completed_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list checkpoints")
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.Stage, &cp.RunID, &cp.Output, &cp.Rows, &cp.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan checkpoint")
		}
		out = append(out, cp)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate checkpoints")
}
