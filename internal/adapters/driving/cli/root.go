// Package cli implements the docsage command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage-cli/internal/app"
	"github.com/docsage/docsage-cli/internal/config"
	"github.com/docsage/docsage-cli/internal/core/ports/driven"
	"github.com/docsage/docsage-cli/internal/core/ports/driving"
	"github.com/docsage/docsage-cli/internal/core/services"
	"github.com/docsage/docsage-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by the commands. Populated lazily by ensureApp; tests
// inject fakes directly.
var (
	application  *app.App
	queryService driving.QueryService
	historyStore driven.HistoryStore
)

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Ask questions about PDF documents",
	Long: `docsage answers natural-language questions about PDF documents.
It extracts the text, builds a semantic index over it (cached per
document content) and generates an answer with a local LLM, citing
the pages it drew from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docsage)")
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if application != nil {
			application.Close()
		}
	}()
	return rootCmd.Execute()
}

// ensureApp loads configuration and builds the application on first
// use. Commands that only need local state (version, history) skip it.
func ensureApp() (*app.App, error) {
	if application != nil {
		return application, nil
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	application = app.New(cfg)
	return application, nil
}

// ensureQueryService wires the full ask pipeline, honouring topK.
func ensureQueryService(ctx context.Context, topK int) (driving.QueryService, error) {
	if queryService != nil {
		return queryService, nil
	}

	a, err := ensureApp()
	if err != nil {
		return nil, err
	}

	svc, err := a.Query(ctx, services.WithRetrievalK(topK))
	if err != nil {
		return nil, fmt.Errorf("initialise pipeline: %w", err)
	}

	queryService = svc
	return queryService, nil
}

// ensureHistoryStore opens the query history store on first use.
func ensureHistoryStore() (driven.HistoryStore, error) {
	if historyStore != nil {
		return historyStore, nil
	}

	a, err := ensureApp()
	if err != nil {
		return nil, err
	}

	store, err := a.History()
	if err != nil {
		return nil, err
	}

	historyStore = store
	return historyStore, nil
}

// Main is the entry point used by cmd/docsage.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
