// Package chunker splits page text into bounded, overlapping chunks.
// Splitting is recursive, preferring natural boundaries (paragraph,
// line, sentence, word) before falling back to hard rune cuts, and is
// deterministic: identical input and tunables always produce the same
// chunk sequence.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/logger"
)

// Ensure Chunker implements the interface.
var _ driven.ChunkSplitter = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters
// carried from a chunk's predecessor.
const DefaultOverlap = 100

// separators order the split preference from coarse to fine.
var separators = []string{"\n\n", "\n", ". ", " "}

// chunkNamespace makes chunk IDs deterministic for a given text and
// position, keeping the chunker a pure function.
var chunkNamespace = uuid.MustParse("9f1c41de-55d1-4f51-9fd5-0c7a3f84a1b2")

// Chunker splits pages into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split turns pages into ordered chunks. Chunks whose trimmed text is
// empty are dropped. Returns domain.ErrInvalidInput for an empty page
// slice and domain.ErrEmptyContent when splitting yields no usable
// chunks (all-whitespace pages).
func (c *Chunker) Split(pages []domain.Page) ([]domain.Chunk, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages provided to the chunker", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	position := 0

	for _, page := range pages {
		for _, text := range c.splitPage(page.Text) {
			if strings.TrimSpace(text) == "" {
				continue
			}

			chunks = append(chunks, domain.Chunk{
				ID:         chunkID(text, position),
				Text:       text,
				SourcePage: page.Index,
				Position:   position,
				Metadata: map[string]any{
					"page": page.Index,
				},
			})
			position++
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: splitting produced no usable chunks; the document may contain only images or blank pages", domain.ErrEmptyContent)
	}

	logger.Info("Split %d page(s) into %d non-empty chunks", len(pages), len(chunks))

	return chunks, nil
}

// splitPage fragments a page at the coarsest workable boundary, then
// merges fragments into windows of at most chunkSize characters with
// overlap carried between neighbours.
func (c *Chunker) splitPage(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}
	return c.merge(c.fragment(text, separators))
}

// fragment recursively cuts text until every piece fits the target,
// falling back to hard rune cuts when no separator helps.
func (c *Chunker) fragment(text string, seps []string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	if len(seps) == 0 {
		return c.hardCut(text)
	}

	sep := seps[0]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		// Separator absent, try the next finer one.
		return c.fragment(text, seps[1:])
	}

	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) <= c.chunkSize {
			out = append(out, part)
			continue
		}
		out = append(out, c.fragment(part, seps[1:])...)
	}

	return out
}

// hardCut slices text into chunkSize pieces on rune boundaries.
func (c *Chunker) hardCut(text string) []string {
	runes := []rune(text)
	var out []string

	for start := 0; start < len(runes); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}

	return out
}

// merge packs fragments into chunks, seeding each chunk after the first
// with the overlap tail of its predecessor. A chunk may exceed the
// target by at most the overlap length.
func (c *Chunker) merge(fragments []string) []string {
	var out []string
	var builder strings.Builder

	for _, frag := range fragments {
		if builder.Len() > 0 && builder.Len()+len(frag) > c.chunkSize {
			emitted := builder.String()
			out = append(out, emitted)
			builder.Reset()
			builder.WriteString(overlapTail(emitted, c.overlap))
		}
		builder.WriteString(frag)
	}

	if builder.Len() > 0 {
		out = append(out, builder.String())
	}

	return out
}

// overlapTail returns the last n characters of s on rune boundaries.
func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// chunkID derives a stable identifier from chunk text and position.
func chunkID(text string, position int) string {
	return uuid.NewSHA1(chunkNamespace, fmt.Appendf(nil, "%d:%s", position, text)).String()
}
