package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently asked questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of entries (default 20)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := ensureHistoryStore()
	if err != nil {
		return err
	}

	entries, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("[%s] %s\n", e.AskedAt.Local().Format("2006-01-02 15:04"), e.Document)
		cmd.Printf("  Q: %s\n", e.Question)
		if e.Failure != domain.FailureNone {
			cmd.Printf("  A: (%s) %s\n", e.Failure, e.Answer)
		} else {
			cmd.Printf("  A: %s\n", e.Answer)
		}
		cmd.Println()
	}

	return nil
}
