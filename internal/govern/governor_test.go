package govern

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/domain"
)

type endedSession struct {
	id     int64
	status string
	count  int
}

type fakeSessions struct {
	nextID  int64
	started []string
	ended   []endedSession
}

func (f *fakeSessions) StartSession(_ context.Context, platform, _ string) (int64, error) {
	f.nextID++
	f.started = append(f.started, platform)
	return f.nextID, nil
}

func (f *fakeSessions) EndSession(_ context.Context, id int64, status string, count int) error {
	f.ended = append(f.ended, endedSession{id: id, status: status, count: count})
	return nil
}

type fakeQuota struct{ n int }

func (f *fakeQuota) CountAppliedToday(context.Context) (int, error) { return f.n, nil }

// zeroClock makes the governor deterministic and instant, recording every
// sleep it would have taken.
func zeroClock(g *Governor, now time.Time) *[]time.Duration {
	var slept []time.Duration
	g.SetClock(
		func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
		func() time.Time { return now },
		rand.New(rand.NewSource(1)),
	)
	return &slept
}

func newTestGovernor(maxPerSession int, breakDur time.Duration) (*Governor, *fakeSessions, *[]time.Duration) {
	sessions := &fakeSessions{}
	g := New(Pacing{
		MaxRequestsPerSession: maxPerSession,
		SessionBreak:          breakDur,
	}, 5, sessions, &fakeQuota{})
	slept := zeroClock(g, time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	return g, sessions, slept
}

func TestBeginSessionConflict(t *testing.T) {
	g, sessions, _ := newTestGovernor(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, g.BeginSession(ctx, "board_a"))
	err := g.BeginSession(ctx, "board_a")
	assert.ErrorIs(t, err, ErrSessionConflict)

	// other platforms are unaffected
	require.NoError(t, g.BeginSession(ctx, "board_b"))
	assert.Equal(t, []string{"board_a", "board_b"}, sessions.started)
}

func TestThrottleWithoutSession(t *testing.T) {
	g, _, _ := newTestGovernor(10, time.Minute)
	err := g.Throttle(context.Background(), "board_a")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestThrottleRolloverAtSessionCap(t *testing.T) {
	breakDur := 5 * time.Minute
	g, sessions, slept := newTestGovernor(3, breakDur)
	ctx := context.Background()

	require.NoError(t, g.BeginSession(ctx, "board_a"))
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Throttle(ctx, "board_a"))
	}
	assert.Empty(t, sessions.ended)

	// the 4th throttle closes the exhausted session, waits out the break and
	// opens a fresh one
	require.NoError(t, g.Throttle(ctx, "board_a"))

	require.Len(t, sessions.ended, 1)
	assert.Equal(t, domain.SessionCompleted, sessions.ended[0].status)
	assert.Equal(t, 3, sessions.ended[0].count)
	assert.Equal(t, []string{"board_a", "board_a"}, sessions.started)
	assert.Contains(t, *slept, breakDur)
}

func TestEndSessionPersistsCount(t *testing.T) {
	g, sessions, _ := newTestGovernor(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, g.BeginSession(ctx, "board_a"))
	require.NoError(t, g.Throttle(ctx, "board_a"))
	require.NoError(t, g.Throttle(ctx, "board_a"))
	require.NoError(t, g.EndSession(ctx, "board_a", domain.SessionRateLimited))

	require.Len(t, sessions.ended, 1)
	assert.Equal(t, domain.SessionRateLimited, sessions.ended[0].status)
	assert.Equal(t, 2, sessions.ended[0].count)

	// ending an absent session is a no-op
	require.NoError(t, g.EndSession(ctx, "board_a", domain.SessionCompleted))
	assert.Len(t, sessions.ended, 1)
}

func TestFingerprintStablePerSession(t *testing.T) {
	g, _, _ := newTestGovernor(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, g.BeginSession(ctx, "board_a"))
	fp := g.Fingerprint("board_a")
	assert.NotEmpty(t, fp)
	assert.Equal(t, fp, g.Fingerprint("board_a"))
}

func TestCheckDailyQuota(t *testing.T) {
	quota := &fakeQuota{n: 4}
	g := New(Pacing{}, 5, &fakeSessions{}, quota)
	zeroClock(g, time.Now())
	ctx := context.Background()

	require.NoError(t, g.CheckDailyQuota(ctx, "application"))

	quota.n = 5
	err := g.CheckDailyQuota(ctx, "application")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// only application submissions are quota'd
	require.NoError(t, g.CheckDailyQuota(ctx, "scrape"))
}
