package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/score"
	"jobpilot-engine/internal/store"
)

type AnalyzeReport struct {
	Analyzed    int
	Shortlisted int
	Rejected    int
	Errors      int
}

// Analyze scores every scraped posting and moves it to shortlisted or
// rejected_by_score. The transition is compare-and-set: a posting some other
// run already advanced is skipped, never re-scored.
func (p *Pipeline) Analyze(ctx context.Context) (AnalyzeReport, error) {
	a := auditor{store: p.store, component: "analyze"}
	var report AnalyzeReport

	postings, err := p.store.PostingsByStatus(ctx, domain.StatusScraped, -1)
	if err != nil {
		return report, fmt.Errorf("load scraped postings: %w", err)
	}
	if len(postings) == 0 {
		a.success(ctx, "stage_done", "no scraped postings to analyze")
		return report, nil
	}

	minScore := p.cfg.Search.MinRelevanceScore
	now := p.now()

	for _, posting := range postings {
		total, breakdown := score.Score(posting, p.profile, p.weights, now)

		target := domain.StatusRejected
		if total >= minScore {
			target = domain.StatusShortlisted
		}

		bd, err := json.Marshal(breakdown)
		if err != nil {
			a.error(ctx, "score", "posting %d: marshal breakdown: %v", posting.ID, err)
			report.Errors++
			continue
		}
		bds := string(bd)

		err = p.store.TransitionPosting(ctx, posting.ID, domain.StatusScraped, target,
			store.TransitionFields{Score: &total, Breakdown: &bds})
		if errors.Is(err, store.ErrConflict) {
			a.warn(ctx, "transition", "posting %d: %v, skipped", posting.ID, err)
			continue
		}
		if err != nil {
			a.error(ctx, "transition", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		report.Analyzed++
		if target == domain.StatusShortlisted {
			report.Shortlisted++
		} else {
			report.Rejected++
		}
		if err := p.store.BumpPlatformStat(ctx, posting.Platform, store.StatAnalyzed, 1); err != nil {
			a.warn(ctx, "platform_stats", "%s: %v", posting.Platform, err)
		}
	}

	a.success(ctx, "stage_done", "%d analyzed: %d shortlisted, %d rejected (min score %.1f)",
		report.Analyzed, report.Shortlisted, report.Rejected, minScore)
	return report, nil
}
