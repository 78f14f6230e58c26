package pipeline

import (
	"context"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/govern"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/submit"
)

type ApplyReport struct {
	Applied   int
	Simulated int // dry-run: checks passed, submission withheld
	Skipped   int
	FollowUps int
	Errors    int
}

// Apply submits applications for shortlisted postings that have a letter and
// no open application. Dry-run performs every check and logs the intended
// submission but never calls the submitter and never writes an Application
// row. The daily quota is checked before each transition, so the applied
// count can never pass the configured limit.
func (p *Pipeline) Apply(ctx context.Context, dryRun bool) (ApplyReport, error) {
	a := auditor{store: p.store, component: "apply"}
	var report ApplyReport

	p.followUpPass(ctx, a, dryRun, &report)

	postings, err := p.store.PostingsByStatus(ctx, domain.StatusShortlisted, -1)
	if err != nil {
		return report, fmt.Errorf("load shortlisted postings: %w", err)
	}
	if len(postings) == 0 {
		a.success(ctx, "stage_done", "no shortlisted postings")
		return report, nil
	}

	if !dryRun && !p.cfg.Application.AutoApply {
		a.warn(ctx, "stage_done", "auto_apply_enabled is false, %d shortlisted postings left untouched", len(postings))
		return report, nil
	}

	for _, posting := range postings {
		cl, hasLetter, err := p.store.LatestCoverLetter(ctx, posting.ID)
		if err != nil {
			a.error(ctx, "lookup", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}
		if !hasLetter {
			report.Skipped++
			continue
		}

		_, open, err := p.store.ActiveApplication(ctx, posting.ID)
		if err != nil {
			a.error(ctx, "lookup", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}
		if open {
			report.Skipped++
			continue
		}

		// quota check precedes the transition; QuotaExceeded stops new
		// submissions for the day without failing the run
		if err := p.gov.CheckDailyQuota(ctx, "application"); err != nil {
			if errors.Is(err, govern.ErrQuotaExceeded) {
				a.warn(ctx, "quota", "%v, stopping submissions for today", err)
				break
			}
			a.error(ctx, "quota", "%v", err)
			report.Errors++
			break
		}

		if dryRun {
			a.success(ctx, "dry_run",
				"would apply to posting %d (%s at %s) via %s, letter=%s resume=%s",
				posting.ID, posting.Title, posting.Company,
				p.submitter.Name(), cl.FilePath, p.cfg.Application.ResumePath)
			report.Simulated++
			continue
		}

		res, err := p.submitter.Submit(ctx, submit.Request{
			Posting:        posting,
			Profile:        p.profile,
			CoverLetterRef: cl.FilePath,
			ResumeRef:      p.cfg.Application.ResumePath,
		})
		if err != nil {
			a.error(ctx, "submit", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		if _, err := p.store.CreateApplication(ctx, domain.Application{
			PostingID:      posting.ID,
			Status:         res.Status,
			Method:         res.Method,
			CoverLetterRef: cl.FilePath,
			ResumeRef:      p.cfg.Application.ResumePath,
			Notes:          res.Notes,
		}, p.cfg.Application.FollowUpDays); err != nil {
			a.error(ctx, "record", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		err = p.store.TransitionPosting(ctx, posting.ID,
			domain.StatusShortlisted, domain.StatusApplied, store.TransitionFields{})
		if errors.Is(err, store.ErrConflict) {
			a.warn(ctx, "transition", "posting %d: %v, skipped", posting.ID, err)
			continue
		}
		if err != nil {
			a.error(ctx, "transition", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		report.Applied++
		a.success(ctx, "applied", "posting %d (%s at %s) via %s",
			posting.ID, posting.Title, posting.Company, res.Method)
		if err := p.store.BumpPlatformStat(ctx, posting.Platform, store.StatApplied, 1); err != nil {
			a.warn(ctx, "platform_stats", "%s: %v", posting.Platform, err)
		}
	}

	a.success(ctx, "stage_done", "applied=%d simulated=%d skipped=%d follow_ups=%d",
		report.Applied, report.Simulated, report.Skipped, report.FollowUps)
	return report, nil
}

// followUpPass flags submitted applications whose follow-up window has
// passed. Dry-run only reports what is due.
func (p *Pipeline) followUpPass(ctx context.Context, a auditor, dryRun bool, report *ApplyReport) {
	rows, err := p.store.ApplicationsNeedingFollowUp(ctx)
	if err != nil {
		a.error(ctx, "follow_up", "%v", err)
		report.Errors++
		return
	}
	for _, row := range rows {
		app := row.Application
		if dryRun {
			a.success(ctx, "follow_up_due", "application %d (%s at %s) due since %s",
				app.ID, row.Title, row.Company, app.FollowUpDue.Format("2006-01-02"))
			continue
		}
		if err := p.store.MarkFollowUpSent(ctx, app.ID); err != nil {
			a.error(ctx, "follow_up", "application %d: %v", app.ID, err)
			report.Errors++
			continue
		}
		report.FollowUps++
		a.success(ctx, "follow_up", "application %d (%s at %s) marked for follow-up",
			app.ID, row.Title, row.Company)
	}
}
