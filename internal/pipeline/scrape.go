package pipeline

import (
	"context"
	"errors"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/fetch"
	"jobpilot-engine/internal/govern"
	"jobpilot-engine/internal/store"
)

type ScrapeReport struct {
	Fetched int
	Stored  int // upserted rows (inserts + refreshes)
	New     int // inserts only
	Errors  int
}

// Scrape pulls raw postings from every enabled platform and upserts them as
// scraped. Each platform runs under its own governor session; a platform
// whose session cannot open is skipped this run, never the whole stage.
func (p *Pipeline) Scrape(ctx context.Context) (ScrapeReport, error) {
	a := auditor{store: p.store, component: "scrape"}
	var report ScrapeReport

	for _, name := range p.cfg.EnabledPlatforms() {
		plat := p.cfg.Platforms[name]

		fetcher, err := p.fetchers.For(plat.Kind)
		if err != nil {
			a.error(ctx, "platform_setup", "%s: %v", name, err)
			report.Errors++
			continue
		}

		if err := p.gov.BeginSession(ctx, name); err != nil {
			if errors.Is(err, govern.ErrSessionConflict) {
				a.warn(ctx, "session_open", "%s: %v, skipping this run", name, err)
			} else {
				a.error(ctx, "session_open", "%s: %v", name, err)
				report.Errors++
			}
			continue
		}

		p.scrapePlatform(ctx, a, name, plat, fetcher, &report)
	}
	return report, nil
}

func (p *Pipeline) scrapePlatform(ctx context.Context, a auditor, name string,
	plat config.Platform, fetcher fetch.Fetcher, report *ScrapeReport) {

	max := plat.MaxPostings
	if max <= 0 || (p.cfg.Search.MaxPostingsPerRun > 0 && max > p.cfg.Search.MaxPostingsPerRun) {
		max = p.cfg.Search.MaxPostingsPerRun
	}

	raws, err := fetcher.Fetch(ctx, fetch.Query{
		Platform:    name,
		Terms:       plat.Queries,
		BoardURLs:   plat.BoardURLs,
		MaxPostings: max,
	})
	if err != nil {
		status := domain.SessionFailed
		if errors.Is(err, fetch.ErrBlocked) {
			status = domain.SessionRateLimited
		}
		a.error(ctx, "fetch", "%s: %v", name, err)
		report.Errors++
		if err := p.gov.EndSession(ctx, name, status); err != nil {
			a.error(ctx, "session_close", "%s: %v", name, err)
		}
		return
	}
	report.Fetched += len(raws)

	var stored, inserted int
	for _, raw := range raws {
		raw.Platform = name
		if err := raw.Validate(); err != nil {
			a.error(ctx, "normalize", "%s: dropped record: %v", name, err)
			report.Errors++
			continue
		}

		_, isNew, err := p.store.UpsertPosting(ctx, raw)
		if err != nil {
			a.error(ctx, "upsert", "%s/%s: %v", name, raw.ExternalID, err)
			report.Errors++
			continue
		}
		stored++
		if isNew {
			inserted++
		}
		if raw.Company != "" {
			if err := p.store.UpsertCompany(ctx, raw.Company); err != nil {
				a.warn(ctx, "company", "%s: %v", raw.Company, err)
			}
		}
	}
	report.Stored += stored
	report.New += inserted

	if stored > 0 {
		if err := p.store.BumpPlatformStat(ctx, name, store.StatScraped, stored); err != nil {
			a.warn(ctx, "platform_stats", "%s: %v", name, err)
		}
	}

	if err := p.gov.EndSession(ctx, name, domain.SessionCompleted); err != nil {
		a.error(ctx, "session_close", "%s: %v", name, err)
	}
	a.success(ctx, "platform_done", "%s: %d fetched, %d stored (%d new)",
		name, len(raws), stored, inserted)
}
