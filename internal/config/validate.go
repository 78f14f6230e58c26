package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Errors block startup; warnings are printed.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.KeywordsHigh = trimList(out.Search.KeywordsHigh)
	out.Search.KeywordsMedium = trimList(out.Search.KeywordsMedium)
	out.Search.Exclude = trimList(out.Search.Exclude)
	out.User.Skills = trimList(out.User.Skills)
	out.User.ContractTypes = trimList(out.User.ContractTypes)
	out.User.Locations.Preferred = trimList(out.User.Locations.Preferred)
	out.User.Locations.Acceptable = trimList(out.User.Locations.Acceptable)

	// ---- Defaults ----

	if out.Search.MinRelevanceScore == 0 {
		out.Search.MinRelevanceScore = 6.0
	}
	if out.Search.FreshnessDays <= 0 {
		out.Search.FreshnessDays = 7
	}
	if out.Search.MaxPostingsPerRun <= 0 {
		out.Search.MaxPostingsPerRun = 100
	}
	if out.Application.DailyLimit <= 0 {
		out.Application.DailyLimit = 30
	}
	if out.Application.FollowUpDays <= 0 {
		out.Application.FollowUpDays = 7
	}
	if out.Application.Method == "" {
		out.Application.Method = "manual_queue"
	}
	if out.Application.Language == "" {
		out.Application.Language = "en"
	}
	if out.Pacing.DelayMinSeconds <= 0 {
		out.Pacing.DelayMinSeconds = 2
	}
	if out.Pacing.DelayMaxSeconds <= 0 {
		out.Pacing.DelayMaxSeconds = 5
	}
	if out.Pacing.MaxRequestsPerSession <= 0 {
		out.Pacing.MaxRequestsPerSession = 30
	}
	if out.Pacing.SessionBreakSeconds <= 0 {
		out.Pacing.SessionBreakSeconds = 300
	}

	// ---- Validation rules ----

	if out.Search.MinRelevanceScore < 0 || out.Search.MinRelevanceScore > 10 {
		res.addErr("search.min_relevance_score must be in 0..10 (got %.1f)", out.Search.MinRelevanceScore)
	}
	if out.Pacing.DelayMaxSeconds < out.Pacing.DelayMinSeconds {
		res.addErr("pacing.delay_max_seconds (%.1f) must be >= delay_min_seconds (%.1f)",
			out.Pacing.DelayMaxSeconds, out.Pacing.DelayMinSeconds)
	}
	if out.Pacing.DelayMinSeconds < 1 {
		res.addWarn("pacing.delay_min_seconds is very low (%.1f); platforms may rate-limit or block.", out.Pacing.DelayMinSeconds)
	}
	if out.Application.DailyLimit > 50 {
		res.addWarn("application.daily_application_limit is %d; high volumes get accounts flagged.", out.Application.DailyLimit)
	}

	if len(out.EnabledPlatforms()) == 0 {
		res.addWarn("no platforms enabled; scrape runs will do nothing.")
	}

	for name, p := range out.Platforms {
		if !p.Enabled {
			continue
		}
		switch p.Kind {
		case "board":
			if len(p.BoardURLs) == 0 {
				res.addErr("platforms.%s: board_urls is required for kind=board", name)
			}
		case "email_alerts":
			if strings.TrimSpace(p.IMAPHost) == "" {
				res.addErr("platforms.%s: imap_host is required for kind=email_alerts", name)
			}
			if p.IMAPPort == 0 {
				res.addErr("platforms.%s: imap_port is required for kind=email_alerts", name)
			}
			if strings.TrimSpace(p.Username) == "" {
				res.addErr("platforms.%s: username is required for kind=email_alerts", name)
			}
			if strings.TrimSpace(p.Mailbox) == "" {
				res.addErr("platforms.%s: mailbox is required for kind=email_alerts", name)
			}
			if len(p.SearchSubjectAny) == 0 {
				res.addWarn("platforms.%s: search_subject_any is empty; alert scraping may find nothing.", name)
			}
		default:
			res.addErr("platforms.%s: unknown kind %q (want board or email_alerts)", name, p.Kind)
		}
	}

	if len(out.Search.KeywordsHigh) == 0 && len(out.Search.KeywordsMedium) == 0 {
		res.addWarn("no search keywords configured; every posting will score 0 on keywords.")
	}

	// keywords also listed as exclusions make scores meaningless
	excl := map[string]bool{}
	for _, e := range out.Search.Exclude {
		excl[strings.ToLower(e)] = true
	}
	for _, k := range append(append([]string{}, out.Search.KeywordsHigh...), out.Search.KeywordsMedium...) {
		if excl[strings.ToLower(k)] {
			res.addWarn("keyword appears in both search and exclude lists: %q", k)
		}
	}

	if !out.User.Locations.RemoteOK && len(out.User.Locations.Preferred) == 0 && len(out.User.Locations.Acceptable) == 0 {
		res.addWarn("remote_ok is false and no locations configured; location scoring will always be 0.")
	}

	return out, res
}
