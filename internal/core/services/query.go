// Package services contains the application core. The query service
// drives the answer pipeline, timing each stage and folding every
// failure into a result the presentation layer can show as-is.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/core/ports/driving"
	"github.com/docsage/docsage-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// MaxQuestionLen is the longest accepted question, in characters.
const MaxQuestionLen = 2000

// ExcerptLen bounds source excerpts, in characters.
const ExcerptLen = 200

// DefaultRetrievalK is how many chunks feed the refine loop.
const DefaultRetrievalK = 4

// User-facing outcome messages. Validation problems return these as
// normal results, never as errors crossing the service boundary.
const (
	msgNoDocument    = "Please provide a document before asking a question."
	msgEmptyQuestion = "Please enter a question about the document."
	msgTooLong       = "Your question is too long (max 2000 characters). Please shorten it and try again."
	msgUnavailable   = "Could not connect to the answer service. Please make sure the model endpoint is running at the configured URL."
	msgUnexpected    = "An unexpected error occurred. Please check the logs or try again."
)

// answerPrompt seeds the refine loop with the first retrieved chunk.
const answerPrompt = `Use the following document context to answer the question.
If the context does not contain the answer, say you don't know.

Context:
%s

Question: %s
Answer:`

// refinePrompt folds each further chunk into the running answer.
const refinePrompt = `An existing answer and additional document context are given below.
Refine the existing answer using the new context.
If the new context adds nothing, return the existing answer unchanged.

Existing answer:
%s

New context:
%s

Question: %s
Refined answer:`

// QueryService answers questions about a single document.
type QueryService struct {
	loader   driven.DocumentLoader
	splitter driven.ChunkSplitter
	cache    driven.IndexCache
	llm      driven.LLMService
	topK     int
}

// Option configures the query service.
type Option func(*QueryService)

// WithRetrievalK sets how many chunks are retrieved per question.
func WithRetrievalK(k int) Option {
	return func(s *QueryService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// NewQueryService creates a query service over the given collaborators.
func NewQueryService(
	loader driven.DocumentLoader,
	splitter driven.ChunkSplitter,
	cache driven.IndexCache,
	llm driven.LLMService,
	opts ...Option,
) *QueryService {
	s := &QueryService{
		loader:   loader,
		splitter: splitter,
		cache:    cache,
		llm:      llm,
		topK:     DefaultRetrievalK,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ask runs the full pipeline for one question against one document.
// It always returns an Answer; see domain.FailureKind for the outcome
// classification.
func (s *QueryService) Ask(ctx context.Context, documentPath, question string) *domain.Answer {
	start := time.Now()
	metrics := domain.QueryMetrics{}

	logger.Section("Query Execution")

	// Validation. These outcomes are recoverable by the user and are
	// returned as normal results.
	if strings.TrimSpace(documentPath) == "" {
		return s.fail(start, metrics, domain.FailureInput, msgNoDocument)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return s.fail(start, metrics, domain.FailureInput, msgEmptyQuestion)
	}
	if utf8.RuneCountInString(question) > MaxQuestionLen {
		return s.fail(start, metrics, domain.FailureInput, msgTooLong)
	}

	logger.Debug("Question: %q", truncate(question, 80))

	// Load.
	stage := time.Now()
	pages, err := s.loader.Load(ctx, documentPath)
	metrics.LoadTime = roundSeconds(time.Since(stage))
	if err != nil {
		return s.failErr(start, metrics, err)
	}
	metrics.NumPages = len(pages)
	logger.Debug("Loaded %d page(s) in %.2fs", metrics.NumPages, metrics.LoadTime)

	// Chunk.
	stage = time.Now()
	chunks, err := s.splitter.Split(pages)
	metrics.ChunkTime = roundSeconds(time.Since(stage))
	if err != nil {
		return s.failErr(start, metrics, err)
	}
	metrics.NumChunks = len(chunks)
	logger.Debug("Split into %d chunk(s) in %.2fs", metrics.NumChunks, metrics.ChunkTime)

	// Index. A cache hit makes this stage near-free.
	stage = time.Now()
	idx, err := s.cache.GetOrBuild(ctx, chunks)
	metrics.EmbedTime = roundSeconds(time.Since(stage))
	if err != nil {
		return s.failErr(start, metrics, err)
	}
	logger.Debug("Index ready (%d chunks) in %.2fs", idx.Len(), metrics.EmbedTime)

	// Retrieve and generate.
	stage = time.Now()
	answer, sources, err := s.generate(ctx, idx, question)
	metrics.GenerationTime = roundSeconds(time.Since(stage))
	if err != nil {
		return s.failErr(start, metrics, err)
	}
	metrics.NumSources = len(sources)
	metrics.TotalLatency = roundSeconds(time.Since(start))

	logger.Info("Answered in %.2fs (%d sources)", metrics.TotalLatency, metrics.NumSources)

	return &domain.Answer{
		Text:    answer,
		Sources: sources,
		Metrics: metrics,
	}
}

// generate retrieves the top-k chunks and folds them into an answer:
// the first chunk seeds it, each further chunk refines the running
// text with one more generation call.
func (s *QueryService) generate(
	ctx context.Context, idx driven.SemanticIndex, question string,
) (string, []domain.SourceAttribution, error) {
	hits, err := idx.Query(ctx, question, s.topK)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve: %w", err)
	}

	logger.Debug("Retrieved %d chunk(s)", len(hits))

	var answer string
	for i, hit := range hits {
		var prompt string
		if i == 0 {
			prompt = fmt.Sprintf(answerPrompt, hit.Chunk.Text, question)
		} else {
			prompt = fmt.Sprintf(refinePrompt, answer, hit.Chunk.Text, question)
		}

		answer, err = s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
		if err != nil {
			return "", nil, fmt.Errorf("generate (step %d/%d): %w", i+1, len(hits), err)
		}
		answer = strings.TrimSpace(answer)
	}

	return answer, attributions(hits), nil
}

// attributions deduplicates retrieved chunks by page in first-seen
// order and bounds each excerpt.
func attributions(hits []driven.ScoredChunk) []domain.SourceAttribution {
	seen := make(map[int]bool, len(hits))
	out := make([]domain.SourceAttribution, 0, len(hits))

	for _, hit := range hits {
		page := hit.Chunk.SourcePage
		if page < 0 {
			page = domain.UnknownPage
		}
		if seen[page] {
			continue
		}
		seen[page] = true

		out = append(out, domain.SourceAttribution{
			Page:    page,
			Excerpt: truncate(strings.TrimSpace(hit.Chunk.Text), ExcerptLen),
		})
	}

	return out
}

// fail finalises a failure outcome with the metrics gathered so far.
func (s *QueryService) fail(
	start time.Time, metrics domain.QueryMetrics, kind domain.FailureKind, msg string,
) *domain.Answer {
	metrics.TotalLatency = roundSeconds(time.Since(start))

	if kind == domain.FailureInput {
		logger.Warn("Recoverable query failure: %s", msg)
	}

	return &domain.Answer{
		Text:    msg,
		Metrics: metrics,
		Failure: kind,
	}
}

// failErr classifies a pipeline error into a user-facing outcome.
// Input problems come back verbatim with a recoverable prefix,
// unreachable backends get a distinct remediation message, and
// everything else is logged in full and redacted for the caller.
func (s *QueryService) failErr(start time.Time, metrics domain.QueryMetrics, err error) *domain.Answer {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyContent):
		return s.fail(start, metrics, domain.FailureInput, "Input error: "+err.Error())

	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		logger.Error("Backend unreachable: %v", err)
		return s.fail(start, metrics, domain.FailureUnavailable, msgUnavailable)

	default:
		logger.Error("Unexpected query failure: %v", err)
		return s.fail(start, metrics, domain.FailureInternal, msgUnexpected)
	}
}

// roundSeconds converts a duration to seconds rounded to two decimals.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// truncate bounds s to n characters on rune boundaries.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
