package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage-cli/internal/adapters/driving/tui"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Start an interactive chat about a PDF document",
	Long: `Opens an interactive session where you can ask a document multiple
questions. The semantic index is built once and reused for every
question in the session.

Controls:
  Enter   - Ask the typed question
  ↑/↓     - Scroll the transcript
  Ctrl+C  - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of passages to retrieve (default 4)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Panic recovery keeps stack traces visible outside the alt screen
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := cmd.Context()
	svc, err := ensureQueryService(ctx, chatTopK)
	if err != nil {
		return err
	}

	model := tui.New(ctx, svc, args[0])
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}

	return nil
}
