package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobpilot-engine/internal/scheduler"
)

var (
	fullNoDryRun bool
	fullEvery    time.Duration
)

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run the whole pipeline: scrape, analyze, letters, apply",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		runOnce := func(ctx context.Context) error {
			r, err := a.pipe.RunWorkflow(ctx, !fullNoDryRun)
			if err != nil {
				return err
			}
			fmt.Printf("full run (dry_run=%v): scraped=%d analyzed=%d shortlisted=%d letters=%d applied=%d simulated=%d errors=%d\n",
				r.DryRun, r.Scraped, r.Analyzed, r.Shortlisted, r.Letters,
				r.Applied, r.Simulated, r.Errors)
			return nil
		}

		if fullEvery <= 0 {
			return runOnce(cmd.Context())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		scheduler.Every(ctx, fullEvery, "workflow", runOnce)
		return nil
	},
}

func init() {
	fullCmd.Flags().BoolVar(&fullNoDryRun, "no-dry-run", false,
		"perform real submissions instead of the default dry-run")
	fullCmd.Flags().DurationVar(&fullEvery, "every", 0,
		"keep running on this interval (e.g. 24h); default runs once")

	rootCmd.AddCommand(fullCmd)
}
