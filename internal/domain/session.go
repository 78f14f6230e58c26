package domain

import "time"

// ScrapingSession status values.
const (
	SessionActive      = "active"
	SessionCompleted   = "completed"
	SessionFailed      = "failed"
	SessionRateLimited = "rate_limited"
)

// ScrapingSession is one bounded burst of requests against a platform.
// At most one active session per platform at a time.
type ScrapingSession struct {
	ID           int64
	Platform     string
	Fingerprint  string // rotated user agent for this burst
	StartedAt    time.Time
	EndedAt      *time.Time
	RequestCount int
	Status       string
}
