// Package pipeline drives postings through the stage state machine:
// scrape -> analyze -> letters -> apply, with report as a read-only view.
// Stages run in sequence within a pass; postings are processed in ascending
// id order so runs are reproducible.
package pipeline

import (
	"context"
	"time"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/fetch"
	"jobpilot-engine/internal/govern"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/score"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/submit"
)

type Pipeline struct {
	store     *store.Store
	gov       *govern.Governor
	fetchers  fetch.Registry
	renderer  letter.Renderer
	submitter submit.Submitter

	cfg     config.Config
	profile domain.Profile
	weights score.Weights

	now func() time.Time
}

func New(st *store.Store, gov *govern.Governor, fetchers fetch.Registry,
	renderer letter.Renderer, submitter submit.Submitter, cfg config.Config) *Pipeline {
	return &Pipeline{
		store:     st,
		gov:       gov,
		fetchers:  fetchers,
		renderer:  renderer,
		submitter: submitter,
		cfg:       cfg,
		profile:   cfg.Profile(),
		weights:   WeightsFrom(cfg),
		now:       time.Now,
	}
}

// SetClock overrides the time source for tests.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// WeightsFrom builds the scoring rubric from config: standard caps, the
// user's keyword lists, and the configured freshness window.
func WeightsFrom(cfg config.Config) score.Weights {
	w := score.DefaultWeights()
	w.KeywordsHigh = cfg.Search.KeywordsHigh
	w.KeywordsMedium = cfg.Search.KeywordsMedium
	w.Exclude = cfg.Search.Exclude
	if cfg.Search.FreshnessDays > 0 {
		w.FreshnessDays = cfg.Search.FreshnessDays
	}
	return w
}

// RunReport aggregates one full workflow pass.
type RunReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	Scraped     int
	Analyzed    int
	Shortlisted int
	Rejected    int
	Letters     int
	Applied     int
	Simulated   int
	Errors      int
}

// RunWorkflow chains all stages. A stage that fails to start is logged and
// skipped; the pass continues so later stages still work through whatever
// earlier runs left eligible.
func (p *Pipeline) RunWorkflow(ctx context.Context, dryRun bool) (RunReport, error) {
	a := auditor{store: p.store, component: "workflow"}
	report := RunReport{StartedAt: p.now(), DryRun: dryRun}

	a.success(ctx, "run_started", "full pass, dry_run=%v", dryRun)

	sc, err := p.Scrape(ctx)
	if err != nil {
		a.error(ctx, "scrape_stage", "stage failed: %v", err)
		report.Errors++
	}
	report.Scraped = sc.Stored
	report.Errors += sc.Errors

	an, err := p.Analyze(ctx)
	if err != nil {
		a.error(ctx, "analyze_stage", "stage failed: %v", err)
		report.Errors++
	}
	report.Analyzed = an.Analyzed
	report.Shortlisted = an.Shortlisted
	report.Rejected = an.Rejected
	report.Errors += an.Errors

	lt, err := p.Letters(ctx)
	if err != nil {
		a.error(ctx, "letters_stage", "stage failed: %v", err)
		report.Errors++
	}
	report.Letters = lt.Generated
	report.Errors += lt.Errors

	ap, err := p.Apply(ctx, dryRun)
	if err != nil {
		a.error(ctx, "apply_stage", "stage failed: %v", err)
		report.Errors++
	}
	report.Applied = ap.Applied
	report.Simulated = ap.Simulated
	report.Errors += ap.Errors

	report.FinishedAt = p.now()
	a.success(ctx, "run_finished",
		"scraped=%d analyzed=%d shortlisted=%d letters=%d applied=%d simulated=%d errors=%d",
		report.Scraped, report.Analyzed, report.Shortlisted, report.Letters,
		report.Applied, report.Simulated, report.Errors)
	return report, nil
}
