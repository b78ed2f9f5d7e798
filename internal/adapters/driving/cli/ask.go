package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/logger"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [file] [question]",
	Short: "Ask a question about a PDF document",
	Long: `Extracts the document text, retrieves the passages most relevant to
the question and generates an answer, citing source pages.

Repeated questions against the same document reuse the cached index.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default 4)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	file, question := args[0], args[1]
	ctx := cmd.Context()

	svc, err := ensureQueryService(ctx, askTopK)
	if err != nil {
		return err
	}

	answer := svc.Ask(ctx, file, question)

	recordHistory(cmd, file, question, answer)

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

// recordHistory logs the exchange; failures to do so never fail the ask.
func recordHistory(cmd *cobra.Command, file, question string, answer *domain.Answer) {
	store, err := ensureHistoryStore()
	if err != nil {
		logger.Debug("history unavailable: %v", err)
		return
	}

	err = store.Record(cmd.Context(), driven.HistoryEntry{
		Document: file,
		Question: question,
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Failure:  answer.Failure,
		Metrics:  answer.Metrics,
		AskedAt:  time.Now(),
	})
	if err != nil {
		logger.Warn("recording history: %v", err)
	}
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if answer.Failed() {
		return nil
	}

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			if src.Page == domain.UnknownPage {
				cmd.Printf("  - (page unknown) %s\n", src.Excerpt)
				continue
			}
			cmd.Printf("  - page %d: %s\n", src.Page, src.Excerpt)
		}
	}

	if logger.IsVerbose() {
		m := answer.Metrics
		cmd.Println()
		cmd.Printf("Timing: load %.2fs, chunk %.2fs, embed %.2fs, generate %.2fs (total %.2fs)\n",
			m.LoadTime, m.ChunkTime, m.EmbedTime, m.GenerationTime, m.TotalLatency)
		cmd.Printf("Pipeline: %d pages, %d chunks, %d sources\n",
			m.NumPages, m.NumChunks, m.NumSources)
	}

	return nil
}
