package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SemanticIndex = (*Index)(nil)

// DefaultTopK is the number of neighbours returned when the caller
// passes a non-positive k.
const DefaultTopK = 4

// Index is an in-memory semantic index over one chunk set, scanned
// brute-force with cosine similarity. Vectors are L2-normalised by the
// embedding service, so similarity reduces to a dot product. The index
// is immutable after construction and safe for concurrent queries.
type Index struct {
	embedder driven.EmbeddingService
	chunks   []domain.Chunk
	vectors  [][]float32
}

// buildIndex embeds every chunk and assembles the index.
func buildIndex(ctx context.Context, embedder driven.EmbeddingService, chunks []domain.Chunk) (*Index, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)

	return &Index{
		embedder: embedder,
		chunks:   stored,
		vectors:  vectors,
	}, nil
}

// Query embeds text and returns the k most similar chunks, best first.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]driven.ScoredChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	query, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := make([]driven.ScoredChunk, len(ix.chunks))
	for i := range ix.vectors {
		hits[i] = driven.ScoredChunk{
			Chunk: ix.chunks[i],
			Score: dot(ix.vectors[i], query),
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
