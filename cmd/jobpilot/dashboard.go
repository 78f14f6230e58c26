package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// dashboardCmd dumps the aggregate the UI layer reads, as JSON. Handy for
// piping into jq or a local dashboard during development.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard snapshot as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		snap, err := a.store.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
