package pipeline

import (
	"context"
	"fmt"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/store"
)

type LettersReport struct {
	Generated int
	Skipped   int // already had a letter
	Errors    int
}

// Letters renders a cover letter for each shortlisted posting that does not
// have one yet. Posting status never changes here; the apply stage looks up
// the artifact itself.
func (p *Pipeline) Letters(ctx context.Context) (LettersReport, error) {
	a := auditor{store: p.store, component: "letters"}
	var report LettersReport

	postings, err := p.store.PostingsByStatus(ctx, domain.StatusShortlisted, -1)
	if err != nil {
		return report, fmt.Errorf("load shortlisted postings: %w", err)
	}

	for _, posting := range postings {
		_, exists, err := p.store.LatestCoverLetter(ctx, posting.ID)
		if err != nil {
			a.error(ctx, "lookup", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		rendered, err := p.renderer.Render(posting, p.profile, p.now())
		if err != nil {
			a.error(ctx, "render", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		name := letter.ArtifactName(posting.ID, rendered.Language)
		path, err := letter.Write(p.cfg.App.DocumentsDir, name, rendered)
		if err != nil {
			a.error(ctx, "write", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		if _, err := p.store.InsertCoverLetter(ctx, store.CoverLetter{
			PostingID: posting.ID,
			FilePath:  path,
			Language:  rendered.Language,
			Content:   rendered.Content,
			Keywords:  rendered.Keywords,
		}); err != nil {
			a.error(ctx, "record", "posting %d: %v", posting.ID, err)
			report.Errors++
			continue
		}

		report.Generated++
		if err := p.store.BumpPlatformStat(ctx, posting.Platform, store.StatLetters, 1); err != nil {
			a.warn(ctx, "platform_stats", "%s: %v", posting.Platform, err)
		}
	}

	a.success(ctx, "stage_done", "%d letters generated, %d already present", report.Generated, report.Skipped)
	return report, nil
}
