package pipeline

import (
	"context"
	"fmt"

	"jobpilot-engine/internal/store"
)

// StageCounts is the per-status distribution of postings.
type StageCounts struct {
	Scraped     int
	Shortlisted int
	Rejected    int
	Applied     int
	Responded   int
	Closed      int
}

type PeriodReport struct {
	Statuses     StageCounts
	Applications store.ApplicationStats
	Platforms    []store.PlatformStatRow
	Companies    int
	FollowUpsDue int
}

// Report aggregates the current pipeline state. Read-only, no transitions.
func (p *Pipeline) Report(ctx context.Context) (PeriodReport, error) {
	var r PeriodReport

	counts, err := p.store.StatusCounts(ctx)
	if err != nil {
		return r, fmt.Errorf("status counts: %w", err)
	}
	r.Statuses = StageCounts{
		Scraped:     counts["scraped"],
		Shortlisted: counts["shortlisted"],
		Rejected:    counts["rejected_by_score"],
		Applied:     counts["applied"],
		Responded:   counts["responded"],
		Closed:      counts["closed"],
	}

	r.Applications, err = p.store.ApplicationStats(ctx)
	if err != nil {
		return r, fmt.Errorf("application stats: %w", err)
	}

	r.Platforms, err = p.store.PlatformStats(ctx, 7)
	if err != nil {
		return r, fmt.Errorf("platform stats: %w", err)
	}

	r.Companies, err = p.store.CompanyCount(ctx)
	if err != nil {
		return r, fmt.Errorf("company count: %w", err)
	}

	due, err := p.store.ApplicationsNeedingFollowUp(ctx)
	if err != nil {
		return r, fmt.Errorf("follow-ups due: %w", err)
	}
	r.FollowUpsDue = len(due)

	return r, nil
}
