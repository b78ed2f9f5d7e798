// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// QueryService answers natural-language questions about one document.
// This is the one contract the presentation layer depends on.
type QueryService interface {
	// Ask runs the full pipeline for a single question against the
	// document at documentPath. It always returns an Answer: validation
	// problems and infrastructure failures are folded into the Answer as
	// user-facing text with a FailureKind, never returned as errors.
	Ask(ctx context.Context, documentPath, question string) *domain.Answer
}
