// Package cli implements the izuchat command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/izu-labs/izuchat/internal/core/ports/driving"
	"github.com/izu-labs/izuchat/internal/logger"
)

var (
	version = "dev"

	configPath  string
	dataDir     string
	verboseMode bool

	// Services are wired lazily by commands that need them, and are
	// package-level so tests can substitute mocks.
	chatService driving.ChatService
	evalService driving.EvalService
)

var rootCmd = &cobra.Command{
	Use:   "izuchat",
	Short: "University RAG chatbot over the IZU web corpus",
	Long: `izuchat answers questions about Istanbul Sabahattin Zaim University
by retrieving relevant passages from a scraped web corpus and generating
a grounded answer with a language model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseMode)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (default: <data-dir>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default: ~/.izuchat)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false,
		"enable verbose output")
}

// Execute runs the root command with the build version injected.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
