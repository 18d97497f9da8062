package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS last_processed (
	show_id      TEXT PRIMARY KEY,
	published_at TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

// SQLiteStore keeps markers in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LastProcessed(showID string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT published_at FROM last_processed WHERE show_id = ?`, showID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query marker: %w", err)
	}

	t, err := parseMarker(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse marker for %s: %w", showID, err)
	}
	return t, true, nil
}

func (s *SQLiteStore) UpdateLastProcessed(showID string, publishedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO last_processed (show_id, published_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(show_id) DO UPDATE SET
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
	`, showID, publishedAt.Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert marker: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
