package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobpilot-engine/internal/config"
)

var configWrite bool

var configCheckCmd = &cobra.Command{
	Use:   "config-check",
	Short: "Validate the config file and optionally write it back normalized",
	RunE: func(_ *cobra.Command, _ []string) error {
		dir := dataDir()
		cfgPath, err := config.EnsureUserConfig(dir, defaultConfigPath)
		if err != nil {
			return fmt.Errorf("bootstrap config: %w", err)
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", cfgPath, err)
		}

		cfg, v := config.NormalizeAndValidate(cfg)
		for _, w := range v.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		for _, e := range v.Errors {
			fmt.Printf("error: %s\n", e)
		}
		if !v.OK() {
			return fmt.Errorf("%s: %d error(s)", cfgPath, len(v.Errors))
		}

		if configWrite {
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("write normalized config: %w", err)
			}
			fmt.Printf("%s normalized and saved\n", cfgPath)
			return nil
		}
		fmt.Printf("%s ok (%d warning(s))\n", cfgPath, len(v.Warnings))
		return nil
	},
}

func init() {
	configCheckCmd.Flags().BoolVar(&configWrite, "write", false,
		"save the normalized config back to disk")
	rootCmd.AddCommand(configCheckCmd)
}
