// Package board scrapes HTML career boards: any page whose listings link to
// per-job detail pages. Covers the common hosted-board layouts without
// board-specific selectors.
package board

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/fetch"
)

type Fetcher struct {
	pacer fetch.Pacer
	hc    *http.Client
}

func New(pacer fetch.Pacer) *Fetcher {
	return &Fetcher{
		pacer: pacer,
		hc:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (f *Fetcher) Name() string { return "board" }

func (f *Fetcher) Fetch(ctx context.Context, q fetch.Query) ([]domain.RawPosting, error) {
	var out []domain.RawPosting
	for _, boardURL := range q.BoardURLs {
		postings, err := f.fetchBoard(ctx, q, boardURL)
		if err != nil {
			// one dead board must not sink the platform's whole run
			if len(q.BoardURLs) == 1 {
				return nil, err
			}
			continue
		}
		out = append(out, postings...)
		if q.MaxPostings > 0 && len(out) >= q.MaxPostings {
			out = out[:q.MaxPostings]
			break
		}
	}
	return out, nil
}

func (f *Fetcher) fetchBoard(ctx context.Context, q fetch.Query, boardURL string) ([]domain.RawPosting, error) {
	doc, err := f.get(ctx, q.Platform, boardURL)
	if err != nil {
		return nil, err
	}

	base := baseOf(boardURL)
	seen := map[string]bool{}
	var postings []domain.RawPosting

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = base + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "/jobs/") && !strings.Contains(low, "/careers/") {
			return
		}

		id := externalID(abs)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		title := cleanText(a.Text())
		if looksLikeJunkTitle(title) {
			title = ""
		}

		postings = append(postings, domain.RawPosting{
			ExternalID: id,
			Title:      title,
			Platform:   q.Platform,
			ApplyURL:   abs,
		})
	})

	// hydrate detail pages; a failed hydrate keeps the minimal entry
	for i := range postings {
		if q.MaxPostings > 0 && i >= q.MaxPostings {
			postings = postings[:i]
			break
		}
		_ = f.hydrate(ctx, q.Platform, &postings[i])
	}

	// drop entries we never got a title for
	kept := postings[:0]
	for _, p := range postings {
		if p.Title != "" {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

func (f *Fetcher) get(ctx context.Context, platform, rawURL string) (*goquery.Document, error) {
	if err := f.pacer.Throttle(ctx, platform); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.pacer.Fingerprint(platform))
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrBlocked, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d from %s", fetch.ErrBlocked, res.StatusCode, rawURL)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("board status %d from %s", res.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse board html: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) hydrate(ctx context.Context, platform string, p *domain.RawPosting) error {
	doc, err := f.get(ctx, platform, p.ApplyURL)
	if err != nil {
		return err
	}

	if p.Title == "" {
		p.Title = cleanText(doc.Find("h1").First().Text())
	}
	if loc := cleanText(doc.Find(".location").First().Text()); loc != "" {
		p.Location = loc
	}
	if sel := doc.Find("#content, .job-description, article").First(); sel.Length() > 0 {
		p.Description = cleanText(sel.Text())
	}
	if p.Company == "" {
		p.Company = cleanText(doc.Find(".company-name, [itemprop=hiringOrganization]").First().Text())
	}
	if p.PostedAt == nil {
		if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, dt); err == nil {
				p.PostedAt = &t
			}
		}
	}
	return nil
}

func externalID(u string) string {
	for _, marker := range []string{"/jobs/", "/careers/"} {
		parts := strings.Split(u, marker)
		if len(parts) < 2 {
			continue
		}
		tail := parts[1]
		if i := strings.IndexAny(tail, "?#"); i >= 0 {
			tail = tail[:i]
		}
		tail = strings.Trim(tail, "/")
		if tail != "" {
			return tail
		}
	}
	return ""
}

func baseOf(rawURL string) string {
	// scheme://host, nothing else
	i := strings.Index(rawURL, "://")
	if i < 0 {
		return rawURL
	}
	rest := rawURL[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rawURL[:i+3+j]
	}
	return rawURL
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view") || strings.Contains(l, "apply") || strings.Contains(l, "see all")
}
