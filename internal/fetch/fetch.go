// Package fetch defines the external scraping capability the pipeline
// consumes. Platform mechanics (DOM layouts, anti-bot tricks) live behind the
// Fetcher interface; the pipeline only sees raw postings.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
)

// ErrBlocked means the source was unreachable or refused us. The platform is
// retried on the next scheduled run, not within this one.
var ErrBlocked = errors.New("source blocked or unreachable")

// Query is one platform's search parameters for a run.
type Query struct {
	Platform    string
	Terms       []string
	BoardURLs   []string
	MaxPostings int
}

// Pacer gates each outbound request. The rate governor satisfies this.
type Pacer interface {
	Throttle(ctx context.Context, platform string) error
	Fingerprint(platform string) string
}

// Fetcher pulls raw postings from one kind of source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]domain.RawPosting, error)
}

// Registry maps a platform kind (board, email_alerts, ...) to its fetcher.
type Registry map[string]Fetcher

func (r Registry) For(kind string) (Fetcher, error) {
	f, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no fetcher for platform kind %q", kind)
	}
	return f, nil
}
