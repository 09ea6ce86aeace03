package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rockyard/rockyard/pkg/rockyard/config"
	"github.com/rockyard/rockyard/pkg/rockyard/logging"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
)

var rootCmd = &cobra.Command{
	Use:   "rockyard",
	Short: "Manage rocks repositories and their manifests",
	Long: `Rockyard indexes rocks repositories: it rebuilds repository manifests,
inspects local and remote repositories, and answers ownership queries
for deployed files.

Examples:
  rockyard make                        # Rebuild the default tree manifest
  rockyard make /srv/rocks             # Index a flat repository directory
  rockyard status https://rocks.example.org/repo
  rockyard owner ~/.rockyard/bin/busted`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format (pretty, plain, json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if err := logging.Init(logging.Config{Level: level, Path: cfg.Logging.Path}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configuredTrees converts configured trees into repo trees.
func configuredTrees(cfg *config.Config) []repo.Tree {
	trees := make([]repo.Tree, 0, len(cfg.Trees))
	for _, tc := range cfg.Trees {
		trees = append(trees, repo.Tree{Root: tc.Root, Priority: tc.Priority})
	}
	return trees
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
