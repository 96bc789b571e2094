// Package eventstore persists build history in SQLite. The watch command
// records one row per completed build so operators can inspect recent
// outcomes without scraping logs.
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord is one completed build.
type BuildRecord struct {
	BuildID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Pages      int
	Redirects  int
	Report     json.RawMessage
}

// SQLiteStore implements build history using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the build history database. Use
// ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		redirects INTEGER NOT NULL,
		report BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_finished ON builds(finished_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a completed build.
func (s *SQLiteStore) Append(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, finished_at, outcome, pages, redirects, report) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.BuildID, rec.StartedAt.Unix(), rec.FinishedAt.Unix(), rec.Outcome, rec.Pages, rec.Redirects, []byte(rec.Report),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, started_at, finished_at, outcome, pages, redirects, report FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var started, finished int64
		var report []byte
		if err := rows.Scan(&rec.BuildID, &started, &finished, &rec.Outcome, &rec.Pages, &rec.Redirects, &report); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.FinishedAt = time.Unix(finished, 0)
		rec.Report = report
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
