package driven

import (
	"context"
	"time"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// HistoryEntry is one answered query as stored in the history log.
type HistoryEntry struct {
	ID       int64
	Document string
	Question string
	Answer   string
	Sources  []domain.SourceAttribution
	Failure  domain.FailureKind
	Metrics  domain.QueryMetrics
	AskedAt  time.Time
}

// HistoryStore records answered queries for later inspection.
type HistoryStore interface {
	// Record appends an entry to the history log.
	Record(ctx context.Context, entry HistoryEntry) error

	// List returns the most recent entries, newest first, capped at
	// limit. A non-positive limit means a store-chosen default.
	List(ctx context.Context, limit int) ([]HistoryEntry, error)

	// ListByDocument returns the most recent entries for one document,
	// newest first, capped at limit like List.
	ListByDocument(ctx context.Context, document string, limit int) ([]HistoryEntry, error)

	// Close releases the underlying storage.
	Close() error
}
