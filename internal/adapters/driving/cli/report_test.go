package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
)

func reportEntries() []driven.HistoryEntry {
	// Newest first, as the store returns them.
	return []driven.HistoryEntry{
		{
			Document: "manual.pdf",
			Question: "Is shipping included?",
			Answer:   "Yes, within the EU.",
			Sources: []domain.SourceAttribution{
				{Page: 7, Excerpt: "Free shipping applies to EU orders."},
			},
			AskedAt: time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC),
		},
		{
			Document: "manual.pdf",
			Question: "How long is the warranty?",
			Answer:   "Two years.",
			Sources: []domain.SourceAttribution{
				{Page: 3, Excerpt: "Warranty period: 24 months."},
				{Page: domain.UnknownPage, Excerpt: "See terms."},
			},
			AskedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestReportCmd_Use(t *testing.T) {
	assert.Equal(t, "report [file]", reportCmd.Use)
}

func TestReportCmd_WritesMarkdown(t *testing.T) {
	store := &mockHistoryStore{entries: reportEntries()}
	withMocks(t, &mockQueryService{}, store)

	output := filepath.Join(t.TempDir(), "report.md")
	t.Cleanup(func() { reportOutput = "" })

	out, err := runCommand(t, "report", "manual.pdf", "--output", output)

	require.NoError(t, err)
	assert.Contains(t, out, "2 entries")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "# docsage Analysis Report")
	assert.Contains(t, report, "**Document:** `manual.pdf`")
	assert.Contains(t, report, "**Queries:** 2")
	assert.Contains(t, report, "**Q:** How long is the warranty?")
	assert.Contains(t, report, "**A:** Two years.")
	assert.Contains(t, report, "- page 3: Warranty period: 24 months.")
	assert.Contains(t, report, "- (page unknown) See terms.")

	// Chronological order: the oldest question is Query 1.
	q1 := "## Query 1\n\n**Q:** How long is the warranty?"
	assert.Contains(t, report, q1)
}

func TestReportCmd_NoEntriesForDocument(t *testing.T) {
	store := &mockHistoryStore{entries: reportEntries()}
	withMocks(t, &mockQueryService{}, store)

	_, err := runCommand(t, "report", "other.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recorded questions for other.pdf")
}

func TestReportCmd_RequiresFile(t *testing.T) {
	withMocks(t, &mockQueryService{}, &mockHistoryStore{})

	_, err := runCommand(t, "report")

	assert.Error(t, err)
}
