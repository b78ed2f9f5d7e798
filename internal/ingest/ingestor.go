// Package ingest turns a PDF file on disk into ordered page-level text.
// Extraction shells out to pdftotext behind a CommandRunner so tests can
// substitute a fake runner.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driven.DocumentLoader = (*Ingestor)(nil)

// SupportedExtension is the one document type the ingestor accepts.
const SupportedExtension = ".pdf"

// pageSeparator is the form feed pdftotext emits between pages.
const pageSeparator = "\f"

// Ingestor loads a single PDF into pages.
type Ingestor struct {
	runner driven.CommandRunner
}

// Option configures the ingestor.
type Option func(*Ingestor)

// WithRunner sets the command runner. Used by tests to avoid a real
// pdftotext dependency.
func WithRunner(r driven.CommandRunner) Option {
	return func(i *Ingestor) {
		if r != nil {
			i.runner = r
		}
	}
}

// New creates a new ingestor with the given options.
func New(opts ...Option) *Ingestor {
	i := &Ingestor{
		runner: execRunner{},
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Load validates the document reference and returns its pages in
// physical order. It reads the file and nothing else.
func (i *Ingestor) Load(ctx context.Context, path string) ([]domain.Page, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no document provided", domain.ErrInvalidInput)
	}

	// One explicit input type: a resolved absolute path, validated here.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path %q: %v", domain.ErrInvalidInput, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: document not found at %s", domain.ErrInvalidInput, abs)
	}

	if ext := strings.ToLower(filepath.Ext(abs)); ext != SupportedExtension {
		return nil, fmt.Errorf("%w: expected a %s file but received %q", domain.ErrInvalidInput, SupportedExtension, ext)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: document is empty (0 bytes)", domain.ErrInvalidInput)
	}

	logger.Debug("Extracting text from %s (%d bytes)", abs, info.Size())

	out, err := i.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", abs, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext: %w", domain.ErrParseFailed, err)
	}

	pages := splitPages(string(out))
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document produced no pages; it may be scanned or image-only", domain.ErrEmptyContent)
	}

	logger.Info("Loaded %d page(s) from %s", len(pages), filepath.Base(abs))

	result := make([]domain.Page, len(pages))
	for n, text := range pages {
		result[n] = domain.Page{
			Index: n,
			Text:  text,
			Metadata: map[string]any{
				"source": abs,
			},
		}
	}

	return result, nil
}

// splitPages cuts extractor output on form feeds, preserving page order.
// A document whose entire text trims to nothing yields no pages.
func splitPages(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	parts := strings.Split(text, pageSeparator)

	// pdftotext terminates every page with a form feed, leaving one
	// empty trailing segment.
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	return parts
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
