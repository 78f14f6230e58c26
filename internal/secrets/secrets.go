// Package secrets reads per-platform credentials from the OS keychain.
// Nothing sensitive ever lands in config.yml or the database.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "jobpilot"

// IMAPAccount names the keychain entry for an email-alert mailbox.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("jobpilot:imap:%s@%s", username, host)
}

// PlatformAccount names the keychain entry for a platform login used by
// automated submission.
func PlatformAccount(platform, username string) string {
	return fmt.Sprintf("jobpilot:platform:%s:%s", platform, username)
}

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("secret %q not found in keychain: %w", account, err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("secret %q is empty", account)
	}
	return pw, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
