package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikmel/jobwire/internal/browse"
	"github.com/nikmel/jobwire/internal/pipeline"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the latest run's jobs in a TUI",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	result, err := pipeline.NewResultCache(cfg.DataDir).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read results cache: %v\n", err)
		os.Exit(1)
	}

	return browse.Run(result)
}
