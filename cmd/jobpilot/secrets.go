package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage platform credentials in the OS keychain",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set PLATFORM",
	Short: "Store the password for a platform (read from stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := accountFor(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "password for %s: ", account)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if err := secrets.Set(account, strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Printf("stored %s\n", account)
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete PLATFORM",
	Short: "Remove a platform's password from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		account, err := accountFor(args[0])
		if err != nil {
			return err
		}
		if err := secrets.Delete(account); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", account)
		return nil
	},
}

// accountFor maps a platform name to its keychain entry. Email-alert
// platforms key on the mailbox; everything else keys on the profile email.
func accountFor(platform string) (string, error) {
	dir := dataDir()
	cfgPath, err := config.EnsureUserConfig(dir, defaultConfigPath)
	if err != nil {
		return "", fmt.Errorf("bootstrap config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	cfg, _ = config.NormalizeAndValidate(cfg)

	p, ok := cfg.Platforms[platform]
	if !ok {
		return "", fmt.Errorf("platform %q not in config", platform)
	}
	if p.Kind == "email_alerts" {
		return secrets.IMAPAccount(p.Username, p.IMAPHost), nil
	}
	return secrets.PlatformAccount(platform, cfg.User.Email), nil
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd, secretsDeleteCmd)
	rootCmd.AddCommand(secretsCmd)
}
