package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

func chunksOf(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{Text: t, Position: i}
	}
	return chunks
}

func TestComputeFingerprint_Deterministic(t *testing.T) {
	chunks := chunksOf("first chunk", "second chunk", "third chunk")

	a := ComputeFingerprint(chunks)
	b := ComputeFingerprint(chunks)

	assert.Equal(t, a, b)
	assert.Len(t, string(a), 64)
}

func TestComputeFingerprint_OrderSensitive(t *testing.T) {
	a := ComputeFingerprint(chunksOf("one", "two"))
	b := ComputeFingerprint(chunksOf("two", "one"))

	assert.NotEqual(t, a, b)
}

func TestComputeFingerprint_ContentSensitive(t *testing.T) {
	a := ComputeFingerprint(chunksOf("the dosage is 5mg"))
	b := ComputeFingerprint(chunksOf("the dosage is 10mg"))

	assert.NotEqual(t, a, b)
}

func TestComputeFingerprint_PrefixBound(t *testing.T) {
	// Chunks that agree on their first PrefixBound characters hash
	// identically even when they diverge beyond the bound.
	head := strings.Repeat("x", PrefixBound)

	a := ComputeFingerprint(chunksOf(head + " tail one"))
	b := ComputeFingerprint(chunksOf(head + " a different tail"))

	assert.Equal(t, a, b)

	// Divergence inside the bound is always seen.
	c := ComputeFingerprint(chunksOf("y" + head[1:] + " tail one"))
	assert.NotEqual(t, a, c)
}

func TestComputeFingerprint_IgnoresMetadata(t *testing.T) {
	plain := chunksOf("same text")
	tagged := chunksOf("same text")
	tagged[0].SourcePage = 7
	tagged[0].ID = "different-id"

	assert.Equal(t, ComputeFingerprint(plain), ComputeFingerprint(tagged))
}

func TestFingerprint_Short(t *testing.T) {
	fp := ComputeFingerprint(chunksOf("abc"))
	assert.Len(t, fp.Short(), 12)
}
