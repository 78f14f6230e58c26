package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/domain"
)

func TestRunWorkflowDryRun(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testConfig(t))
	h.fetcher.postings = []domain.RawPosting{goodRaw("w1"), badRaw("w2")}

	rep, err := h.pipe.RunWorkflow(ctx, true)
	require.NoError(t, err)

	assert.True(t, rep.DryRun)
	assert.Equal(t, 2, rep.Scraped)
	assert.Equal(t, 2, rep.Analyzed)
	assert.Equal(t, 1, rep.Shortlisted)
	assert.Equal(t, 1, rep.Rejected)
	assert.Equal(t, 1, rep.Letters)
	assert.Equal(t, 1, rep.Simulated)
	assert.Equal(t, 0, rep.Applied)
	assert.Equal(t, 0, rep.Errors)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))

	// dry run submitted nothing and moved nothing past shortlisted
	assert.Empty(t, h.submitter.requests)
	counts, err := h.store.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusShortlisted])
	assert.Equal(t, 1, counts[domain.StatusRejected])

	entries, err := h.store.RecentActivity(ctx, 100)
	require.NoError(t, err)
	var started, finished bool
	for _, e := range entries {
		started = started || e.Action == "run_started"
		finished = finished || e.Action == "run_finished"
	}
	assert.True(t, started)
	assert.True(t, finished)
}

func TestRunWorkflowRealFollowsDryRun(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testConfig(t))
	h.fetcher.postings = []domain.RawPosting{goodRaw("w1")}

	_, err := h.pipe.RunWorkflow(ctx, true)
	require.NoError(t, err)

	rep, err := h.pipe.RunWorkflow(ctx, false)
	require.NoError(t, err)

	// rescrape updates, letter already exists, apply goes through
	assert.Equal(t, 1, rep.Scraped)
	assert.Equal(t, 0, rep.Letters)
	assert.Equal(t, 1, rep.Applied)
	assert.Equal(t, 0, rep.Simulated)
	require.Len(t, h.submitter.requests, 1)

	counts, err := h.store.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusApplied])
}
