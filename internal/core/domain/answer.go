package domain

// UnknownPage labels a source whose page could not be determined.
const UnknownPage = -1

// FailureKind classifies why a query did not produce an answer.
type FailureKind string

const (
	// FailureNone means the query succeeded.
	FailureNone FailureKind = ""

	// FailureInput covers user-correctable problems: bad or missing
	// document, blank or oversized question, unusable content.
	FailureInput FailureKind = "input"

	// FailureUnavailable means the generation backend was unreachable.
	FailureUnavailable FailureKind = "unavailable"

	// FailureInternal covers everything else. Details go to the log,
	// the caller only sees a redacted summary.
	FailureInternal FailureKind = "internal"
)

// SourceAttribution points at the document text that supported an answer.
type SourceAttribution struct {
	// Page is the zero-based page number, or UnknownPage.
	Page int `json:"page"`

	// Excerpt is a trimmed snippet of the supporting chunk,
	// truncated to a bounded length.
	Excerpt string `json:"excerpt"`
}

// QueryMetrics reports per-stage wall-clock timing and pipeline counts
// for a single query. Durations are seconds rounded to two decimals.
type QueryMetrics struct {
	LoadTime       float64 `json:"load_time"`
	ChunkTime      float64 `json:"chunk_time"`
	EmbedTime      float64 `json:"embed_time"`
	GenerationTime float64 `json:"generation_time"`
	TotalLatency   float64 `json:"total_latency"`

	NumPages   int `json:"num_pages"`
	NumChunks  int `json:"num_chunks"`
	NumSources int `json:"num_sources"`
}

// Answer is the result of one question against one document.
// A query always produces an Answer: failures are folded into Text as a
// user-facing message and classified by Failure, never raised past the
// query service boundary.
type Answer struct {
	// Text is the generated answer, or a user-facing failure message.
	Text string `json:"text"`

	// Sources lists the supporting passages, deduplicated by page in
	// first-seen order. Empty on failure.
	Sources []SourceAttribution `json:"sources"`

	// Metrics holds the timings and counts gathered for this query.
	Metrics QueryMetrics `json:"metrics"`

	// Failure classifies the outcome. FailureNone on success.
	Failure FailureKind `json:"failure,omitempty"`
}

// Failed reports whether the query produced a failure outcome.
func (a *Answer) Failed() bool {
	return a.Failure != FailureNone
}
