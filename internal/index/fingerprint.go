// Package index builds and caches in-memory semantic indices keyed by
// chunk content.
package index

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// PrefixBound is how many characters of each chunk feed the fingerprint.
// Hashing a bounded prefix keeps fingerprinting fast on large documents
// at the cost of treating documents as identical when every chunk agrees
// on its first PrefixBound characters. That collision is an accepted
// tradeoff for this domain; changing the bound changes cache hit rates.
const PrefixBound = 200

// Fingerprint is a deterministic hex digest identifying a chunk set's
// content for caching.
type Fingerprint string

// Short returns an abbreviated form for logging.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// ComputeFingerprint accumulates one sha256 over the bounded prefix of
// every chunk's text, in chunk order. Two chunk sets that agree on every
// prefix, in the same order, always produce the same fingerprint.
func ComputeFingerprint(chunks []domain.Chunk) Fingerprint {
	h := sha256.New()
	for _, ch := range chunks {
		h.Write([]byte(prefix(ch.Text, PrefixBound)))
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// prefix returns the first n characters of s on rune boundaries.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
