package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "solvenv",
		Short: "solvenv - managed solver environments",
		Long: `solvenv routes optimization problems through managed, licensed
solver environments.

Features:
  - Deterministic environment acquisition and release
  - Retryable license contention, no poisoned state
  - Environment vs. model option classification
  - Sequential parameter sweeps through one adapter
  - Solve-run history in SQLite`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newProbeCommand())
	rootCmd.AddCommand(newSolveCommand())
	rootCmd.AddCommand(newSweepCommand())
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}
