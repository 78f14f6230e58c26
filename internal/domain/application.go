package domain

import "time"

// Application status values. Forward-only, except rejected which is terminal
// from any state.
const (
	AppPending    = "pending"
	AppSubmitted  = "submitted"
	AppViewed     = "viewed"
	AppRejected   = "rejected"
	AppInterview  = "interview_scheduled"
	AppOffer      = "offer_received"
)

// appRank orders application statuses for the forward-only check.
var appRank = map[string]int{
	AppPending:   0,
	AppSubmitted: 1,
	AppViewed:    2,
	AppInterview: 3,
	AppOffer:     4,
}

// Application is one submission against a posting.
type Application struct {
	ID             int64
	PostingID      int64
	Status         string
	Method         string
	CoverLetterRef string
	ResumeRef      string
	Notes          string
	SubmittedAt    time.Time
	FollowUpDue    *time.Time
	FollowUpSent   bool
	ResponseAt     *time.Time
	ResponseType   string
}

// Terminal reports whether the application can no longer advance.
func (a Application) Terminal() bool {
	return a.Status == AppRejected
}

// CanAdvanceTo reports whether a status change is legal: forward along the
// pipeline, or to rejected from anywhere.
func CanAdvanceTo(from, to string) bool {
	if to == AppRejected {
		return from != AppRejected
	}
	fr, ok1 := appRank[from]
	tr, ok2 := appRank[to]
	return ok1 && ok2 && tr > fr
}
