// Package submit carries an application over its final hop. The pipeline
// decides WHETHER to apply; a Submitter only performs the configured
// delivery method.
package submit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/secrets"
)

// Request is everything a Submitter needs to deliver one application.
type Request struct {
	Posting        domain.Posting
	Profile        domain.Profile
	CoverLetterRef string
	ResumeRef      string
}

// Result reports how the delivery went.
type Result struct {
	Method string
	Status string // domain application status to record
	Notes  string
}

type Submitter interface {
	Name() string
	Submit(ctx context.Context, req Request) (Result, error)
}

// ManualQueueSubmitter never touches the network. It records the application
// as pending so a human works through the queue from the report.
type ManualQueueSubmitter struct{}

func (ManualQueueSubmitter) Name() string { return "manual_queue" }

func (ManualQueueSubmitter) Submit(_ context.Context, req Request) (Result, error) {
	log.Printf("[submit] queued for manual review: %s at %s (%s)",
		req.Posting.Title, req.Posting.Company, req.Posting.ApplyURL)
	return Result{
		Method: "manual_queue",
		Status: domain.AppPending,
		Notes:  "queued for manual submission",
	}, nil
}

// FormSubmitter POSTs the application to the posting's apply URL. Credentials
// come from the OS keychain, keyed by platform and the profile email.
type FormSubmitter struct {
	hc *http.Client
}

func NewFormSubmitter() *FormSubmitter {
	return &FormSubmitter{hc: &http.Client{Timeout: 30 * time.Second}}
}

func (s *FormSubmitter) Name() string { return "auto_form" }

func (s *FormSubmitter) Submit(ctx context.Context, req Request) (Result, error) {
	if req.Posting.ApplyURL == "" {
		return Result{}, fmt.Errorf("posting %d has no apply url", req.Posting.ID)
	}

	token, err := secrets.Get(secrets.PlatformAccount(req.Posting.Platform, req.Profile.Email))
	if err != nil {
		return Result{}, fmt.Errorf("form submit: %w", err)
	}

	form := url.Values{
		"name":         {req.Profile.FullName},
		"email":        {req.Profile.Email},
		"phone":        {req.Profile.Phone},
		"cover_letter": {req.CoverLetterRef},
		"resume":       {req.ResumeRef},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		req.Posting.ApplyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.hc.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("form submit %s: %w", req.Posting.ApplyURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("form submit %s: status %d", req.Posting.ApplyURL, resp.StatusCode)
	}
	return Result{
		Method: "auto_form",
		Status: domain.AppSubmitted,
		Notes:  fmt.Sprintf("form posted, status %d", resp.StatusCode),
	}, nil
}

// ForMethod picks the configured submitter, defaulting to the manual queue on
// anything unrecognized. Applying is the one irreversible step in the
// pipeline, so unknown config degrades to the safe path.
func ForMethod(method string) Submitter {
	switch method {
	case "form", "auto_form":
		return NewFormSubmitter()
	default:
		return ManualQueueSubmitter{}
	}
}
