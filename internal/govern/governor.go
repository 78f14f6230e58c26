// Package govern enforces pacing and quota limits so no stage can hammer a
// platform, independent of stage logic. Every stage shares one policy; tests
// substitute a zero-delay governor.
package govern

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobpilot-engine/internal/domain"
)

var (
	// ErrSessionConflict means a platform already has an active session.
	// The caller skips that platform's work this run.
	ErrSessionConflict = errors.New("session already active")

	// ErrQuotaExceeded means today's application ceiling is reached. Not an
	// error state; the caller stops submitting for the day and carries on.
	ErrQuotaExceeded = errors.New("daily application quota exceeded")

	// ErrNoSession means Throttle was called without BeginSession.
	ErrNoSession = errors.New("no active session")
)

// Pacing bounds one platform burst.
type Pacing struct {
	DelayMin              time.Duration
	DelayMax              time.Duration
	MaxRequestsPerSession int
	SessionBreak          time.Duration
}

// SessionStore persists session rows. Satisfied by *store.Store.
type SessionStore interface {
	StartSession(ctx context.Context, platform, fingerprint string) (int64, error)
	EndSession(ctx context.Context, id int64, status string, requestCount int) error
}

// QuotaCounter reports today's applied count. Satisfied by *store.Store.
type QuotaCounter interface {
	CountAppliedToday(ctx context.Context) (int, error)
}

// Governor tracks per-platform sessions and decides whether an operation may
// proceed now, and when it must pause.
type Governor struct {
	pacing     Pacing
	dailyLimit int
	sessions   SessionStore
	quota      QuotaCounter

	mu            sync.Mutex
	active        map[string]*session
	cooldownUntil map[string]time.Time

	// injectable for deterministic tests
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	rnd   *rand.Rand
}

type session struct {
	id          int64
	fingerprint string
	count       int
	limiter     *rate.Limiter
}

func New(pacing Pacing, dailyLimit int, sessions SessionStore, quota QuotaCounter) *Governor {
	return &Governor{
		pacing:        pacing,
		dailyLimit:    dailyLimit,
		sessions:      sessions,
		quota:         quota,
		active:        make(map[string]*session),
		cooldownUntil: make(map[string]time.Time),
		sleep:         sleepCtx,
		now:           time.Now,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock overrides sleep/now/rand. Tests only.
func (g *Governor) SetClock(sleep func(context.Context, time.Duration) error, now func() time.Time, rnd *rand.Rand) {
	if sleep != nil {
		g.sleep = sleep
	}
	if now != nil {
		g.now = now
	}
	if rnd != nil {
		g.rnd = rnd
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BeginSession opens a session for a platform with a fresh identity
// fingerprint. Fails with ErrSessionConflict if one is already active. If the
// platform is cooling down after an exhausted session, the remaining break is
// waited out first.
func (g *Governor) BeginSession(ctx context.Context, platform string) error {
	g.mu.Lock()
	if _, ok := g.active[platform]; ok {
		g.mu.Unlock()
		return fmt.Errorf("platform %s: %w", platform, ErrSessionConflict)
	}
	var wait time.Duration
	if until, ok := g.cooldownUntil[platform]; ok {
		wait = until.Sub(g.now())
	}
	g.mu.Unlock()

	if wait > 0 {
		log.Printf("[governor] %s cooling down %s before new session", platform, wait.Round(time.Second))
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return g.openSession(ctx, platform)
}

func (g *Governor) openSession(ctx context.Context, platform string) error {
	fp := userAgents[g.rnd.Intn(len(userAgents))]
	id, err := g.sessions.StartSession(ctx, platform, fp)
	if err != nil {
		return fmt.Errorf("open session for %s: %w", platform, err)
	}

	g.mu.Lock()
	g.active[platform] = &session{
		id:          id,
		fingerprint: fp,
		limiter:     rate.NewLimiter(rate.Every(g.pacing.DelayMin), 1),
	}
	delete(g.cooldownUntil, platform)
	g.mu.Unlock()

	log.Printf("[governor] %s session %d opened", platform, id)
	return nil
}

// Throttle blocks before each external request: the base limiter paces
// requests at least DelayMin apart, plus a uniform random jitter up to
// DelayMax. When the session's request counter has reached the cap, the
// session is closed as completed and the mandatory break is enforced before a
// fresh session opens for the next request.
func (g *Governor) Throttle(ctx context.Context, platform string) error {
	g.mu.Lock()
	s, ok := g.active[platform]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("platform %s: %w", platform, ErrNoSession)
	}

	if s.count >= g.pacing.MaxRequestsPerSession {
		log.Printf("[governor] %s session %d exhausted (%d requests), taking a break",
			platform, s.id, s.count)
		if err := g.EndSession(ctx, platform, domain.SessionCompleted); err != nil {
			return err
		}
		g.mu.Lock()
		g.cooldownUntil[platform] = g.now().Add(g.pacing.SessionBreak)
		g.mu.Unlock()

		if err := g.sleep(ctx, g.pacing.SessionBreak); err != nil {
			return err
		}
		if err := g.openSession(ctx, platform); err != nil {
			return err
		}
		g.mu.Lock()
		s = g.active[platform]
		g.mu.Unlock()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if jitterMax := g.pacing.DelayMax - g.pacing.DelayMin; jitterMax > 0 {
		jitter := time.Duration(g.rnd.Int63n(int64(jitterMax)))
		if err := g.sleep(ctx, jitter); err != nil {
			return err
		}
	}

	s.count++
	return nil
}

// Fingerprint returns the active session's identity for a platform, for
// callers that set request headers.
func (g *Governor) Fingerprint(platform string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.active[platform]; ok {
		return s.fingerprint
	}
	return userAgents[0]
}

// EndSession closes the platform's session with the given status and persists
// its final request count.
func (g *Governor) EndSession(ctx context.Context, platform, status string) error {
	g.mu.Lock()
	s, ok := g.active[platform]
	delete(g.active, platform)
	g.mu.Unlock()
	if !ok {
		return nil
	}
	if err := g.sessions.EndSession(ctx, s.id, status, s.count); err != nil {
		return fmt.Errorf("end session for %s: %w", platform, err)
	}
	log.Printf("[governor] %s session %d ended (%s, %d requests)", platform, s.id, status, s.count)
	return nil
}

// CheckDailyQuota decides whether another operation of the given kind may
// happen today. Only application submissions count against a quota.
func (g *Governor) CheckDailyQuota(ctx context.Context, kind string) error {
	if kind != "application" {
		return nil
	}
	n, err := g.quota.CountAppliedToday(ctx)
	if err != nil {
		return fmt.Errorf("count applied today: %w", err)
	}
	if n >= g.dailyLimit {
		return fmt.Errorf("%d/%d applications today: %w", n, g.dailyLimit, ErrQuotaExceeded)
	}
	return nil
}

// Rotated browser identities for session fingerprints.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}
