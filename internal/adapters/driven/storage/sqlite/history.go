// Package sqlite provides a SQLite-backed query history store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS query_history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	document  TEXT NOT NULL,
	question  TEXT NOT NULL,
	answer    TEXT NOT NULL,
	sources   TEXT NOT NULL DEFAULT '[]',
	failure   TEXT NOT NULL DEFAULT '',
	metrics   TEXT NOT NULL DEFAULT '{}',
	asked_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_history_asked_at ON query_history(asked_at);
CREATE INDEX IF NOT EXISTS idx_query_history_document ON query_history(document);
`

// HistoryStore persists answered queries in a SQLite database.
type HistoryStore struct {
	db   *sql.DB
	path string
}

// NewHistoryStore opens (or creates) the history database under
// dataDir. An empty dataDir means ~/.docsage/data.
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docsage", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &HistoryStore{db: db, path: dbPath}, nil
}

// Record appends an entry to the history log.
func (s *HistoryStore) Record(ctx context.Context, entry driven.HistoryEntry) error {
	metrics, err := json.Marshal(entry.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	sources := entry.Sources
	if sources == nil {
		sources = []domain.SourceAttribution{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}

	askedAt := entry.AskedAt
	if askedAt.IsZero() {
		askedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_history (document, question, answer, sources, failure, metrics, asked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Document,
		entry.Question,
		entry.Answer,
		string(sourcesJSON),
		string(entry.Failure),
		string(metrics),
		askedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	return nil
}

// List returns the most recent entries, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]driven.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, question, answer, sources, failure, metrics, asked_at
		 FROM query_history
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return scanEntries(rows)
}

// ListByDocument returns the most recent entries for one document,
// newest first.
func (s *HistoryStore) ListByDocument(ctx context.Context, document string, limit int) ([]driven.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, question, answer, sources, failure, metrics, asked_at
		 FROM query_history
		 WHERE document = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		document,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history for %s: %w", document, err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]driven.HistoryEntry, error) {
	defer rows.Close()

	var entries []driven.HistoryEntry
	for rows.Next() {
		var (
			entry   driven.HistoryEntry
			sources string
			failure string
			metrics string
			askedAt string
		)
		if err := rows.Scan(&entry.ID, &entry.Document, &entry.Question, &entry.Answer, &sources, &failure, &metrics, &askedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		entry.Failure = domain.FailureKind(failure)
		if err := json.Unmarshal([]byte(sources), &entry.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources for entry %d: %w", entry.ID, err)
		}
		if err := json.Unmarshal([]byte(metrics), &entry.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics for entry %d: %w", entry.ID, err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, askedAt); err == nil {
			entry.AskedAt = ts
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}

	return entries, nil
}

// Path returns the database file path.
func (s *HistoryStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
