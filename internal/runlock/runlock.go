// Package runlock guards against two jobpilot processes working the same
// data directory at once. Two concurrent pipelines would race the scraping
// session table and blow through the pacing limits together.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

type Lock struct {
	fl *flock.Flock
}

// Acquire takes a non-blocking exclusive lock on dataDir/jobpilot.lock.
// If another process holds it, the caller should exit rather than wait.
func Acquire(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, "jobpilot.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another jobpilot process is already running against %s", dataDir)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
