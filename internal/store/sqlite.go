package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists seen job identities in a SQLite database so that
// deduplication survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the seen_jobs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_jobs (
		job_id     TEXT PRIMARY KEY,
		first_seen DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given identity has already been recorded.
// Lookup only, never mutates.
func (s *SQLiteStore) HasSeen(id string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE job_id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", id, err)
	}
	return true, nil
}

// MarkSeen records an identity with its first-seen timestamp. Idempotent:
// marking an identity twice keeps the original timestamp.
func (s *SQLiteStore) MarkSeen(id string, at time.Time) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (job_id, first_seen) VALUES (?, ?)", id, at.UTC())
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", id, err)
	}
	return nil
}

// Prune deletes entries older than the given duration. Optional housekeeping:
// only presence matters for correctness, so pruning never breaks dedup of
// postings still inside the age window.
func (s *SQLiteStore) Prune(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
