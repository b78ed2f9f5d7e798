package driven

import (
	"context"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// SemanticIndex supports nearest-neighbour retrieval over embedded chunks.
// An index is built once for a chunk set and is safe for concurrent queries.
type SemanticIndex interface {
	// Query embeds text and returns the k most similar chunks,
	// best first.
	Query(ctx context.Context, text string, k int) ([]ScoredChunk, error)

	// Len returns the number of indexed chunks.
	Len() int
}

// ScoredChunk is a similarity search result.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the cosine similarity (vectors are normalised, so 0-1).
	Score float64
}

// IndexCache maps content fingerprints to built semantic indices.
// For a given fingerprint, construction happens at most once per process;
// racing builders converge on a single build.
type IndexCache interface {
	// GetOrBuild returns the index for the chunks' fingerprint, building
	// and registering it on first sight. Returns domain.ErrInvalidInput
	// for an empty chunk set.
	GetOrBuild(ctx context.Context, chunks []domain.Chunk) (SemanticIndex, error)

	// Len returns the number of cached indices. Entries are never
	// evicted, so this only grows within a process.
	Len() int
}
