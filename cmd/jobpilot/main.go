// Package main is the jobpilot CLI: stage subcommands over the job
// application pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobpilot",
	Short: "Job application pipeline: scrape, score, write letters, apply",
	Long: `jobpilot advances job postings through a persistent state machine:
scrape -> analyze -> letters -> apply, under per-platform rate limits and a
daily application quota. Apply runs in dry-run mode unless --no-dry-run is
given.`,
	SilenceUsage: true,
}

func main() {
	// .env may carry JOBPILOT_DATA_DIR
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
