package domain

// Page is one physical page of an ingested document.
// Pages are produced by the ingestor in document order and are immutable.
type Page struct {
	// Index is the zero-based position within the document.
	Index int

	// Text is the extracted page text.
	Text string

	// Metadata contains arbitrary source key-value pairs.
	Metadata map[string]any
}

// Chunk represents a retrievable unit of document text.
// Pages are split into chunks for granular retrieval; a chunk never
// changes after creation and lives only as long as one index build.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content. Always non-empty after trimming.
	Text string

	// SourcePage is the zero-based page the chunk was cut from.
	SourcePage int

	// Position is the ordinal position within the document.
	Position int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}
