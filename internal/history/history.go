// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a ledger of pipeline runs in SQLite. Every
// convert, fix, audit, and final-check invocation records its mode,
// timing, per-role counts, and findings, so regressions between runs of
// a long migration stay visible. The ledger is advisory: recording
// failures must never change a run's outcome.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cxxport/internal/report"
)

const dbFile = "cxxport.db"

// Store manages the run-ledger SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at dir/cxxport.db, creating
// the schema when absent.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			headers INTEGER NOT NULL,
			sources INTEGER NOT NULL,
			flawed INTEGER NOT NULL,
			passed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_issues (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			path TEXT,
			check_name TEXT NOT NULL,
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_issues_run_id ON run_issues(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID        string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
	Headers   int
	Sources   int
	Flawed    int
	Passed    bool
}

// Record stores a report with its timing and returns the new run's id.
func (s *Store) Record(ctx context.Context, rep report.Report, started time.Time, dur time.Duration) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, started_at, duration_ms, headers, sources, flawed, passed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(rep.Mode), started.UTC().Format(time.RFC3339Nano), dur.Milliseconds(),
		rep.Headers.Total, rep.Sources.Total,
		rep.Headers.Flawed+rep.Sources.Flawed, rep.Passed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_issues (run_id, path, check_name, detail) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing issue insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range rep.Findings {
		if _, err := stmt.ExecContext(ctx, id, f.Path, f.Issue.Check, f.Issue.Detail); err != nil {
			return "", fmt.Errorf("inserting issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns up to 20.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, started_at, duration_ms, headers, sources, flawed, passed
		 FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			duration int64
		)
		if err := rows.Scan(&r.ID, &r.Mode, &started, &duration,
			&r.Headers, &r.Sources, &r.Flawed, &r.Passed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		r.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Issues returns the findings recorded for a run, in insertion order.
func (s *Store) Issues(ctx context.Context, runID string) ([]report.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, check_name, detail FROM run_issues WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	var findings []report.Finding
	for rows.Next() {
		var f report.Finding
		if err := rows.Scan(&f.Path, &f.Issue.Check, &f.Issue.Detail); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
