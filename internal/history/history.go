// Package history records every backup and restore run in a local
// sqlite journal, listed by the history command.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"dotsync/internal/history/migrations"
)

// Run is one recorded backup or restore invocation.
type Run struct {
	ID          string
	Operation   string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	FilesCopied int64
	CommitHash  string
}

// Duration returns the run's elapsed time, or zero while unfinished.
func (r *Run) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// Store persists runs to a sqlite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal at path and brings its
// schema up to date. Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin inserts a new run in "running" state and returns it.
func (s *Store) Begin(operation string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Operation: operation,
		StartedAt: s.now().UTC(),
		Status:    "running",
	}

	_, err := s.db.Exec(
		`INSERT INTO sync_runs (id, operation, started_at, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.Operation, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}
	return run, nil
}

// Finish marks the run completed with its outcome.
func (s *Store) Finish(run *Run, status string, filesCopied int64, commitHash string) error {
	finished := s.now().UTC()
	_, err := s.db.Exec(
		`UPDATE sync_runs SET finished_at = ?, status = ?, files_copied = ?, commit_hash = ? WHERE id = ?`,
		finished, status, filesCopied, commitHash, run.ID,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}

	run.FinishedAt = sql.NullTime{Time: finished, Valid: true}
	run.Status = status
	run.FilesCopied = filesCopied
	run.CommitHash = commitHash
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, operation, started_at, finished_at, status, files_copied, commit_hash
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Operation, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.FilesCopied, &run.CommitHash); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
