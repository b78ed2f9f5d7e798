package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

func pagesFrom(texts ...string) []domain.Page {
	pages := make([]domain.Page, len(texts))
	for i, t := range texts {
		pages[i] = domain.Page{Index: i, Text: t}
	}
	return pages
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultOverlap, c.overlap)
}

func TestNew_OverlapClamped(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(200))
	assert.Equal(t, 25, c.overlap)
}

func TestSplit_EmptyInput(t *testing.T) {
	_, err := New().Split(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSplit_WhitespacePagesOnly(t *testing.T) {
	_, err := New().Split(pagesFrom("   ", "\n\n\t"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestSplit_ShortPageIsOneChunk(t *testing.T) {
	chunks, err := New().Split(pagesFrom("a short page"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short page", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].SourcePage)
	assert.Equal(t, 0, chunks[0].Position)
}

func TestSplit_ChunksAreNonEmptyAndBounded(t *testing.T) {
	text := strings.Repeat("The dosage is two tablets daily. ", 200)
	c := New(WithChunkSize(100), WithOverlap(20))

	chunks, err := c.Split(pagesFrom(text))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(ch.Text))
		// Bounded above by the target plus the overlap tolerance.
		assert.LessOrEqual(t, len(ch.Text), 100+20)
	}
}

func TestSplit_CoversOriginalText(t *testing.T) {
	text := strings.Repeat("Take with food. Avoid alcohol while on this medication. ", 60)
	c := New(WithChunkSize(120), WithOverlap(30))

	chunks, err := c.Split(pagesFrom(text))
	require.NoError(t, err)

	// Each chunk after the first starts with its predecessor's overlap
	// tail; stripping those prefixes must reconstruct the source exactly.
	rebuilt := chunks[0].Text
	for i := 1; i < len(chunks); i++ {
		prefix := overlapTail(chunks[i-1].Text, 30)
		require.True(t, strings.HasPrefix(chunks[i].Text, prefix))
		rebuilt += chunks[i].Text[len(prefix):]
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplit_OverlapCarried(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon. ", 40)
	c := New(WithChunkSize(100), WithOverlap(25))

	chunks, err := c.Split(pagesFrom(text))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := prev[len(prev)-10:]
		assert.Contains(t, chunks[i].Text, tail,
			"chunk %d should begin with context from its predecessor", i)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := pagesFrom(strings.Repeat("Symptoms include fever and fatigue. ", 80))
	c := New(WithChunkSize(150), WithOverlap(30))

	first, err := c.Split(pages)
	require.NoError(t, err)
	second, err := c.Split(pages)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestSplit_PreservesPageOrder(t *testing.T) {
	chunks, err := New().Split(pagesFrom("page one text", "page two text", "page three text"))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.SourcePage)
		assert.Equal(t, i, ch.Position)
		assert.Equal(t, i, ch.Metadata["page"])
	}
}

func TestSplit_DropsBlankPages(t *testing.T) {
	chunks, err := New().Split(pagesFrom("content here", "   ", "more content"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].SourcePage)
	assert.Equal(t, 2, chunks[1].SourcePage)
}

func TestHardCut_RuneSafe(t *testing.T) {
	c := New(WithChunkSize(4), WithOverlap(0))
	pieces := c.hardCut("héllo wörld")

	var rebuilt strings.Builder
	for _, p := range pieces {
		assert.True(t, len([]rune(p)) <= 4)
		rebuilt.WriteString(p)
	}
	assert.Equal(t, "héllo wörld", rebuilt.String())
}
