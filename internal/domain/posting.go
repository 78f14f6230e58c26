package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Posting status values. Transitions are monotonic within a run:
// scraped -> {shortlisted | rejected_by_score} -> applied -> {responded | closed}.
const (
	StatusScraped     = "scraped"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected_by_score"
	StatusApplied     = "applied"
	StatusResponded   = "responded"
	StatusClosed      = "closed"
)

// ErrInvalidPosting marks a malformed scraped record. The record is dropped
// and logged; it never aborts a stage run.
var ErrInvalidPosting = errors.New("invalid posting")

// RawPosting is what a fetch capability hands back before normalization.
type RawPosting struct {
	ExternalID      string
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    string
	SalaryRange     string
	ContractType    string // internship/apprenticeship/full_time/...
	ExperienceLevel string
	PostedAt        *time.Time
	ApplyURL        string
	Platform        string
	Payload         string // opaque capture of the source record
}

// Posting is a job listing tracked through the pipeline.
type Posting struct {
	ID              int64
	Platform        string
	ExternalID      string
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    string
	SalaryRange     string
	ContractType    string
	ExperienceLevel string
	PostedAt        *time.Time
	ApplyURL        string
	Payload         string
	Status          string
	Score           float64
	Breakdown       string // JSON-serialized score.Breakdown, written by the Analyze stage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate rejects records that cannot be keyed or displayed. Everything else
// is tolerated; scraping sources are messy.
func (r RawPosting) Validate() error {
	if strings.TrimSpace(r.ExternalID) == "" {
		return fmt.Errorf("%w: missing external id", ErrInvalidPosting)
	}
	if strings.TrimSpace(r.Platform) == "" {
		return fmt.Errorf("%w: missing platform", ErrInvalidPosting)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title (id=%s)", ErrInvalidPosting, r.ExternalID)
	}
	return nil
}

// SearchText joins the fields the scorer matches against.
func (p Posting) SearchText() string {
	fields := []string{p.Title, p.Description, p.Requirements, p.Company, p.Location}
	nonEmpty := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " ")
}
