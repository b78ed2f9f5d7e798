package domain

import "errors"

// Domain errors represent pipeline failures.
// Infrastructure adapters wrap these so callers can classify with errors.Is.
var (
	// ErrInvalidInput indicates a bad or missing document or question.
	// User-correctable; the query service turns it into a message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates the document parsed but yielded nothing
	// usable (image-only scans, all-whitespace pages).
	ErrEmptyContent = errors.New("no usable content")

	// ErrParseFailed indicates the underlying extractor failed.
	// The original cause is always wrapped alongside.
	ErrParseFailed = errors.New("parse failed")

	// ErrConfig indicates missing required configuration or credential.
	// Fatal at startup for the owning component.
	ErrConfig = errors.New("missing required configuration")

	// ErrInitFailed indicates a model failed to load or validate.
	ErrInitFailed = errors.New("initialisation failed")

	// ErrLLMUnavailable indicates the generation backend is unreachable.
	// Reported to users distinctly from generic failures.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
