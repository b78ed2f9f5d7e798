// Package app wires configuration, adapters and services together.
// Components are built lazily on first use so cheap commands never pay
// for model connections they don't need.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/docsage/docsage-cli/internal/adapters/driven/embedding/hf"
	"github.com/docsage/docsage-cli/internal/adapters/driven/llm/ollama"
	"github.com/docsage/docsage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docsage/docsage-cli/internal/chunker"
	"github.com/docsage/docsage-cli/internal/config"
	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/core/services"
	"github.com/docsage/docsage-cli/internal/index"
	"github.com/docsage/docsage-cli/internal/ingest"
	"github.com/docsage/docsage-cli/internal/logger"
)

// App holds lazily initialised application components. The zero value
// is not usable; construct with New.
type App struct {
	cfg config.Config

	embedOnce sync.Once
	embedder  driven.EmbeddingService
	embedErr  error

	llmOnce sync.Once
	llm     driven.LLMService
	llmErr  error

	cacheOnce sync.Once
	cache     *index.Cache

	queryOnce sync.Once
	query     *services.QueryService
	queryErr  error

	historyOnce sync.Once
	history     driven.HistoryStore
	historyErr  error
}

// New creates an App from the loaded configuration.
func New(cfg config.Config) *App {
	return &App{cfg: cfg}
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Embedder returns the embedding service, connecting on first call.
func (a *App) Embedder(ctx context.Context) (driven.EmbeddingService, error) {
	a.embedOnce.Do(func() {
		svc, err := hf.NewEmbeddingService(hf.Config{
			Token: a.cfg.Token,
			Model: a.cfg.Embedding.Model,
		})
		if err != nil {
			a.embedErr = err
			return
		}

		logger.Debug("connecting to embedding model %s", a.cfg.Embedding.Model)
		if err := svc.Ping(ctx); err != nil {
			a.embedErr = fmt.Errorf("%w: embedding model %s: %w", domain.ErrInitFailed, a.cfg.Embedding.Model, err)
			return
		}
		a.embedder = svc
	})
	return a.embedder, a.embedErr
}

// LLM returns the generation service, connecting on first call.
func (a *App) LLM(ctx context.Context) (driven.LLMService, error) {
	a.llmOnce.Do(func() {
		svc := ollama.NewLLMService(ollama.Config{
			BaseURL:     a.cfg.LLM.BaseURL,
			Model:       a.cfg.LLM.Model,
			Temperature: a.cfg.LLM.Temperature,
			NumCtx:      a.cfg.LLM.NumCtx,
			NumGPU:      a.cfg.LLM.NumGPU,
		})

		logger.Debug("connecting to LLM %s at %s", a.cfg.LLM.Model, a.cfg.LLM.BaseURL)
		if err := svc.Ping(ctx); err != nil {
			a.llmErr = fmt.Errorf("%w: llm %s: %w", domain.ErrInitFailed, a.cfg.LLM.Model, err)
			return
		}
		a.llm = svc
	})
	return a.llm, a.llmErr
}

// Cache returns the process-wide semantic index cache.
func (a *App) Cache(ctx context.Context) (*index.Cache, error) {
	embedder, err := a.Embedder(ctx)
	if err != nil {
		return nil, err
	}
	a.cacheOnce.Do(func() {
		a.cache = index.NewCache(embedder)
	})
	return a.cache, nil
}

// Query returns the query service, assembling the full pipeline on
// first call. Options are applied only on that first call.
func (a *App) Query(ctx context.Context, opts ...services.Option) (*services.QueryService, error) {
	a.queryOnce.Do(func() {
		cache, err := a.Cache(ctx)
		if err != nil {
			a.queryErr = err
			return
		}
		llm, err := a.LLM(ctx)
		if err != nil {
			a.queryErr = err
			return
		}

		a.query = services.NewQueryService(
			ingest.New(),
			chunker.New(),
			cache,
			llm,
			opts...,
		)
	})
	return a.query, a.queryErr
}

// History returns the query history store, opening it on first call.
func (a *App) History() (driven.HistoryStore, error) {
	a.historyOnce.Do(func() {
		dir := a.cfg.ConfigDir
		if dir == "" {
			var err error
			dir, err = config.Dir()
			if err != nil {
				a.historyErr = err
				return
			}
		}
		store, err := sqlite.NewHistoryStore(filepath.Join(dir, "data"))
		if err != nil {
			a.historyErr = fmt.Errorf("open history store: %w", err)
			return
		}
		a.history = store
	})
	return a.history, a.historyErr
}

// Close releases any components that were initialised.
func (a *App) Close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			logger.Warn("closing embedder: %v", err)
		}
	}
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			logger.Warn("closing llm: %v", err)
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			logger.Warn("closing history store: %v", err)
		}
	}
}
