package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/store"
)

// runToLetters advances n good postings to shortlisted-with-letter.
func runToLetters(t *testing.T, h *harness, n int) {
	t.Helper()
	ctx := context.Background()
	var raws []domain.RawPosting
	for i := 0; i < n; i++ {
		raws = append(raws, goodRaw(fmt.Sprintf("j-%d", i)))
	}
	h.fetcher.postings = raws
	_, err := h.pipe.Scrape(ctx)
	require.NoError(t, err)
	_, err = h.pipe.Analyze(ctx)
	require.NoError(t, err)
	_, err = h.pipe.Letters(ctx)
	require.NoError(t, err)
}

func TestApplyDryRunNeverSubmitsNorPersists(t *testing.T) {
	h := newHarness(t, testConfig(t))
	runToLetters(t, h, 2)
	ctx := context.Background()

	r, err := h.pipe.Apply(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Simulated)
	assert.Zero(t, r.Applied)

	// no submitter call, no application row, no status change
	assert.Empty(t, h.submitter.requests)
	shortlisted, err := h.store.PostingsByStatus(ctx, domain.StatusShortlisted, -1)
	require.NoError(t, err)
	assert.Len(t, shortlisted, 2)
	for _, p := range shortlisted {
		_, open, err := h.store.ActiveApplication(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, open)
	}
}

func TestApplySubmitsAndTransitions(t *testing.T) {
	h := newHarness(t, testConfig(t))
	runToLetters(t, h, 1)
	ctx := context.Background()

	r, err := h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Applied)

	require.Len(t, h.submitter.requests, 1)
	assert.NotEmpty(t, h.submitter.requests[0].CoverLetterRef)

	applied, err := h.store.PostingsByStatus(ctx, domain.StatusApplied, -1)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	app, open, err := h.store.ActiveApplication(ctx, applied[0].ID)
	require.NoError(t, err)
	require.True(t, open)
	assert.Equal(t, domain.AppSubmitted, app.Status)
	require.NotNil(t, app.FollowUpDue)

	// an open application blocks a second submission
	r, err = h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, r.Applied)
	assert.Len(t, h.submitter.requests, 1)
}

func TestApplyStopsAtDailyQuota(t *testing.T) {
	h := newHarness(t, testConfig(t)) // daily limit 5
	runToLetters(t, h, 6)
	ctx := context.Background()

	r, err := h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Applied)
	assert.Len(t, h.submitter.requests, 5)

	// the 6th stays shortlisted and the stop is audited as a warning
	shortlisted, err := h.store.PostingsByStatus(ctx, domain.StatusShortlisted, -1)
	require.NoError(t, err)
	assert.Len(t, shortlisted, 1)

	entries, err := h.store.RecentActivity(ctx, 50)
	require.NoError(t, err)
	var quotaWarned bool
	for _, e := range entries {
		if e.Component == "apply" && e.Action == "quota" && e.Outcome == store.OutcomeWarning {
			quotaWarned = true
		}
	}
	assert.True(t, quotaWarned)
}

func TestApplySkipsPostingsWithoutLetter(t *testing.T) {
	h := newHarness(t, testConfig(t))
	ctx := context.Background()

	h.fetcher.postings = []domain.RawPosting{goodRaw("j-1")}
	_, err := h.pipe.Scrape(ctx)
	require.NoError(t, err)
	_, err = h.pipe.Analyze(ctx)
	require.NoError(t, err)
	// letters stage intentionally not run

	r, err := h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, r.Applied)
	assert.Equal(t, 1, r.Skipped)
	assert.Empty(t, h.submitter.requests)
}

func TestApplyAutoApplyDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Application.AutoApply = false
	h := newHarness(t, cfg)
	runToLetters(t, h, 1)
	ctx := context.Background()

	// dry-run still simulates
	r, err := h.pipe.Apply(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Simulated)

	// real mode refuses to submit anything
	r, err = h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, r.Applied)
	assert.Empty(t, h.submitter.requests)
}

func TestApplyFollowUpPass(t *testing.T) {
	h := newHarness(t, testConfig(t))
	runToLetters(t, h, 1)
	ctx := context.Background()

	_, err := h.pipe.Apply(ctx, false)
	require.NoError(t, err)

	// age the application past its follow-up date
	applied, err := h.store.PostingsByStatus(ctx, domain.StatusApplied, -1)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	future := time.Now().AddDate(0, 0, 10)
	h.store.SetClock(func() time.Time { return future })

	r, err := h.pipe.Apply(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, r.FollowUps)

	due, err := h.store.ApplicationsNeedingFollowUp(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)
}
