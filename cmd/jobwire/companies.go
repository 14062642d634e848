package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikmel/jobwire/internal/pipeline"
	"github.com/nikmel/jobwire/internal/social"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies currently hiring",
	Long:  "Reads the latest results cache and prints the distinct hiring companies,\nwith X profile links where a handle mapping exists.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
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
	companies := result.Companies()
	if len(companies) == 0 {
		fmt.Println("No cached results yet. Run `jobwire run` first.")
		return nil
	}

	handles, err := social.LoadHandles(cfg.HandlesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load handles file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-30s %s\n", "Company", "X profile")
	fmt.Println(strings.Repeat("─", 52))

	linked := 0
	for _, company := range companies {
		profile := "—"
		if handle, ok := handles.Lookup(company); ok {
			profile = "https://x.com/" + handle
			linked++
		}
		fmt.Printf("%-30s %s\n", company, profile)
	}

	fmt.Printf("\nTotal: %d companies hiring (%d with profiles), run of %s\n",
		len(companies), linked, result.GeneratedAt.Format("2006-01-02 15:04"))
	return nil
}
