package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var applyNoDryRun bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch postings from every enabled platform",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		r, err := a.pipe.Scrape(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("scrape: %d fetched, %d stored (%d new), %d errors\n",
			r.Fetched, r.Stored, r.New, r.Errors)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score scraped postings and shortlist or reject them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		r, err := a.pipe.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("analyze: %d scored, %d shortlisted, %d rejected, %d errors\n",
			r.Analyzed, r.Shortlisted, r.Rejected, r.Errors)
		return nil
	},
}

var lettersCmd = &cobra.Command{
	Use:   "letters",
	Short: "Generate cover letters for shortlisted postings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		r, err := a.pipe.Letters(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("letters: %d generated, %d already present, %d errors\n",
			r.Generated, r.Skipped, r.Errors)
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit applications for shortlisted postings (dry-run by default)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		r, err := a.pipe.Apply(cmd.Context(), !applyNoDryRun)
		if err != nil {
			return err
		}
		fmt.Printf("apply: %d applied, %d simulated, %d skipped, %d follow-ups, %d errors\n",
			r.Applied, r.Simulated, r.Skipped, r.FollowUps, r.Errors)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print stage counts and per-platform statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		r, err := a.pipe.Report(cmd.Context())
		if err != nil {
			return err
		}

		s := r.Statuses
		fmt.Printf("postings:      scraped=%d shortlisted=%d rejected=%d applied=%d responded=%d closed=%d\n",
			s.Scraped, s.Shortlisted, s.Rejected, s.Applied, s.Responded, s.Closed)
		fmt.Printf("applications:  total=%d today=%d responded=%d response_rate=%.1f%%\n",
			r.Applications.Total, r.Applications.Today, r.Applications.Responded,
			r.Applications.ResponseRate)
		fmt.Printf("companies:     %d\n", r.Companies)
		fmt.Printf("follow-ups due: %d\n", r.FollowUpsDue)
		if len(r.Platforms) > 0 {
			fmt.Println("last 7 days per platform:")
			for _, row := range r.Platforms {
				fmt.Printf("  %-10s %s  scraped=%d analyzed=%d letters=%d applied=%d\n",
					row.Platform, row.Date, row.PostingsScraped, row.PostingsAnalyzed,
					row.LettersGenerated, row.ApplicationsSent)
			}
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyNoDryRun, "no-dry-run", false,
		"perform real submissions instead of the default dry-run")

	rootCmd.AddCommand(scrapeCmd, analyzeCmd, lettersCmd, applyCmd, reportCmd)
}
