package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
)

var (
	reportOutput string
	reportLimit  int
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Export past questions about a document as a Markdown report",
	Long: `Renders the recorded Q&A history for one document into a Markdown
file: a header with timestamp and query count, then each question with
its answer and page citations.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default docsage-report-<timestamp>.md)")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 0, "maximum number of entries (default 20)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	document := args[0]

	store, err := ensureHistoryStore()
	if err != nil {
		return err
	}

	entries, err := store.ListByDocument(cmd.Context(), document, reportLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no recorded questions for %s", document)
	}

	output := reportOutput
	if output == "" {
		output = fmt.Sprintf("docsage-report-%s.md", time.Now().Format("20060102-150405"))
	}

	report := renderReport(document, entries)
	if err := os.WriteFile(output, []byte(report), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	cmd.Printf("Report with %d entries written to %s\n", len(entries), output)
	return nil
}

// renderReport builds the Markdown document. Entries arrive newest
// first and are rendered in chronological order.
func renderReport(document string, entries []driven.HistoryEntry) string {
	var b strings.Builder

	b.WriteString("# docsage Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s  \n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Document:** `%s`  \n", filepath.Base(document))
	fmt.Fprintf(&b, "**Queries:** %d  \n\n", len(entries))
	b.WriteString("---\n\n")

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "## Query %d\n\n", len(entries)-i)
		fmt.Fprintf(&b, "**Q:** %s\n\n", e.Question)
		fmt.Fprintf(&b, "**A:** %s\n\n", e.Answer)

		if len(e.Sources) > 0 {
			b.WriteString("**Sources:**\n\n")
			for _, src := range e.Sources {
				if src.Page == domain.UnknownPage {
					fmt.Fprintf(&b, "- (page unknown) %s\n", src.Excerpt)
					continue
				}
				fmt.Fprintf(&b, "- page %d: %s\n", src.Page, src.Excerpt)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("*Generated by docsage from the recorded query history.*\n")
	return b.String()
}
