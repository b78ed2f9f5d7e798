package driven

import (
	"context"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// DocumentLoader turns a document reference into ordered pages.
type DocumentLoader interface {
	// Load validates the path and returns one Page per physical page.
	Load(ctx context.Context, path string) ([]domain.Page, error)
}

// ChunkSplitter cuts pages into retrieval-sized chunks.
type ChunkSplitter interface {
	// Split returns ordered, non-empty chunks for the given pages.
	Split(pages []domain.Page) ([]domain.Chunk, error)
}
