package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.IndexCache = (*Cache)(nil)

// Cache maps content fingerprints to built indices for the lifetime of
// the process. Construction is single-flighted per fingerprint, so N
// concurrent callers with the same new fingerprint share one build while
// callers with different fingerprints build independently.
//
// Entries are never evicted. Documents are short-lived (one per
// session), so growth is bounded by session variety; a bounded policy
// would key eviction by fingerprint and must never serve an index for a
// different fingerprint.
type Cache struct {
	embedder driven.EmbeddingService
	group    singleflight.Group
	builds   atomic.Int64

	mu      sync.RWMutex
	indices map[Fingerprint]*Index
}

// NewCache creates an empty index cache over the given embedder.
func NewCache(embedder driven.EmbeddingService) *Cache {
	return &Cache{
		embedder: embedder,
		indices:  make(map[Fingerprint]*Index),
	}
}

// GetOrBuild returns the index for the chunks' fingerprint. A cache hit
// returns the existing index with no re-embedding; a miss embeds every
// chunk, builds the index, and registers it under the fingerprint.
func (c *Cache) GetOrBuild(ctx context.Context, chunks []domain.Chunk) (driven.SemanticIndex, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: cannot build an index from an empty chunk set", domain.ErrInvalidInput)
	}

	fp := ComputeFingerprint(chunks)

	if ix := c.lookup(fp); ix != nil {
		logger.Info("Reusing cached index (fingerprint=%s..., %d chunks)", fp.Short(), ix.Len())
		return ix, nil
	}

	v, err, shared := c.group.Do(string(fp), func() (any, error) {
		// A racer may have finished while we queued.
		if ix := c.lookup(fp); ix != nil {
			return ix, nil
		}

		logger.Info("Building index for %d chunks with %s (%d dims, fingerprint=%s...)",
			len(chunks), c.embedder.ModelName(), c.embedder.Dimensions(), fp.Short())

		ix, err := buildIndex(ctx, c.embedder, chunks)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.indices[fp] = ix
		c.mu.Unlock()
		c.builds.Add(1)

		return ix, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", fp.Short(), err)
	}

	if shared {
		logger.Debug("Joined in-flight build for fingerprint=%s...", fp.Short())
	}

	return v.(*Index), nil
}

// Len returns the number of cached indices.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indices)
}

// Builds returns how many indices this cache has constructed. At most
// one build ever happens per fingerprint.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

func (c *Cache) lookup(fp Fingerprint) *Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indices[fp]
}
