package pipeline

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/fetch"
	"jobpilot-engine/internal/govern"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/submit"
)

// stubFetcher returns a fixed batch of raw postings.
type stubFetcher struct {
	postings []domain.RawPosting
	err      error
	calls    int
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(context.Context, fetch.Query) ([]domain.RawPosting, error) {
	f.calls++
	return f.postings, f.err
}

// stubRenderer avoids template machinery in pipeline tests.
type stubRenderer struct{}

func (stubRenderer) Render(p domain.Posting, _ domain.Profile, _ time.Time) (letter.Letter, error) {
	return letter.Letter{Language: "en", Content: "letter for " + p.Title}, nil
}

// recordingSubmitter captures every real submission.
type recordingSubmitter struct {
	requests []submit.Request
	err      error
}

func (s *recordingSubmitter) Name() string { return "recording" }

func (s *recordingSubmitter) Submit(_ context.Context, req submit.Request) (submit.Result, error) {
	if s.err != nil {
		return submit.Result{}, s.err
	}
	s.requests = append(s.requests, req)
	return submit.Result{Method: "recording", Status: domain.AppSubmitted}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.App.DocumentsDir = t.TempDir()
	cfg.User.FullName = "Test User"
	cfg.User.Skills = []string{"Python", "SQL"}
	cfg.User.ContractTypes = []string{"internship"}
	cfg.User.Locations.Preferred = []string{"Paris"}
	cfg.Search.KeywordsMedium = []string{"data"}
	cfg.Search.MinRelevanceScore = 6.0
	cfg.Search.FreshnessDays = 7
	cfg.Application.DailyLimit = 5
	cfg.Application.AutoApply = true
	cfg.Application.FollowUpDays = 7
	cfg.Platforms = map[string]config.Platform{
		"board_a": {Enabled: true, Kind: "board"},
	}
	return cfg
}

type harness struct {
	store     *store.Store
	gov       *govern.Governor
	fetcher   *stubFetcher
	submitter *recordingSubmitter
	pipe      *Pipeline
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()

	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// Advance the store clock a second per call so created_at and updated_at
	// differ across consecutive upserts, as the store tests do.
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	n := 0
	st.SetClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	})

	gov := govern.New(govern.Pacing{MaxRequestsPerSession: 100},
		cfg.Application.DailyLimit, st, st)
	gov.SetClock(
		func(context.Context, time.Duration) error { return nil },
		nil,
		rand.New(rand.NewSource(1)),
	)

	fetcher := &stubFetcher{}
	submitter := &recordingSubmitter{}
	pipe := New(st, gov, fetch.Registry{"board": fetcher}, stubRenderer{}, submitter, cfg)

	return &harness{store: st, gov: gov, fetcher: fetcher, submitter: submitter, pipe: pipe}
}

// goodRaw scores well above the 6.0 shortlist threshold with testConfig.
func goodRaw(externalID string) domain.RawPosting {
	posted := time.Now().AddDate(0, 0, -1)
	return domain.RawPosting{
		ExternalID:   externalID,
		Platform:     "board_a",
		Title:        "Data Analyst Intern",
		Description:  "data work with Python and SQL",
		Company:      "Acme",
		Location:     "Paris",
		ContractType: "internship",
		PostedAt:     &posted,
	}
}

// badRaw lands below the threshold.
func badRaw(externalID string) domain.RawPosting {
	return domain.RawPosting{
		ExternalID:  externalID,
		Platform:    "board_a",
		Title:       "Underwater Basket Weaver",
		Description: "nothing relevant",
		Company:     "Acme",
	}
}
