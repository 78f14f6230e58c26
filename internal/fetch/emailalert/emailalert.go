// Package emailalert turns job-alert emails (LinkedIn digests and the like)
// into raw postings by polling an IMAP mailbox. Alert emails carry the
// listing basics, so no site request is needed per posting.
package emailalert

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/fetch"
	"jobpilot-engine/internal/secrets"
)

// Account is the mailbox to poll for one platform. Password comes from the
// OS keychain, never from config.
type Account struct {
	Host     string
	Port     int
	Username string
	Mailbox  string

	// SubjectAny filters which messages count as job alerts.
	SubjectAny []string
}

type Fetcher struct {
	accounts map[string]Account // platform name -> mailbox
}

func New(accounts map[string]Account) *Fetcher {
	return &Fetcher{accounts: accounts}
}

func (f *Fetcher) Name() string { return "email_alerts" }

func (f *Fetcher) Fetch(ctx context.Context, q fetch.Query) ([]domain.RawPosting, error) {
	acct, ok := f.accounts[q.Platform]
	if !ok {
		return nil, fmt.Errorf("no mailbox configured for platform %q", q.Platform)
	}
	password, err := secrets.Get(secrets.IMAPAccount(acct.Username, acct.Host))
	if err != nil {
		return nil, fmt.Errorf("platform %s: %w (run `jobpilot secrets set`)", q.Platform, err)
	}

	addr := fmt.Sprintf("%s:%d", acct.Host, acct.Port)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: acct.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: imap dial: %v", fetch.ErrBlocked, err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[email_alerts] logout: %v", err)
		}
		_ = c.Close()
	}()

	if err := c.Login(acct.Username, password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	mailbox := acct.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	// only recent unseen alerts; old digests are stale listings anyway
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, 0, -14),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true, // never mark alerts \Seen from a scrape
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []domain.RawPosting
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var subject string
		var date time.Time
		if buf.Envelope != nil {
			subject = buf.Envelope.Subject
			date = buf.Envelope.Date
		}
		if !subjectMatches(subject, acct.SubjectAny) {
			continue
		}

		var body []byte
		if b := buf.FindBodySection(bodyAll); b != nil {
			body = b
		}

		postings := parseAlertBody(q.Platform, string(body), date)
		out = append(out, postings...)
		if q.MaxPostings > 0 && len(out) >= q.MaxPostings {
			out = out[:q.MaxPostings]
			break
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	log.Printf("[email_alerts] %d postings from %d unseen messages", len(out), len(uids))
	return out, nil
}

func subjectMatches(subject string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, s := range wanted {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" && strings.Contains(low, s) {
			return true
		}
	}
	return false
}

// alert bodies link each listing at a jobs/view URL with the title and
// company on the surrounding lines
var jobURLRe = regexp.MustCompile(`https?://[^\s">]+/jobs/view/(\d+)[^\s">]*`)

func parseAlertBody(platform, body string, received time.Time) []domain.RawPosting {
	matches := jobURLRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var out []domain.RawPosting
	for _, m := range matches {
		rawURL := body[m[0]:m[1]]
		id := body[m[2]:m[3]]
		if seen[id] {
			continue
		}
		seen[id] = true

		title, company, location := contextAround(body, m[0])
		t := received
		out = append(out, domain.RawPosting{
			ExternalID: id,
			Title:      title,
			Company:    company,
			Location:   location,
			Platform:   platform,
			ApplyURL:   stripTracking(rawURL),
			PostedAt:   &t,
			Payload:    title + " | " + company + " | " + location,
		})
	}
	return out
}

// contextAround walks backwards from the link and takes the nearest non-empty
// lines as title / company / location, the order alert digests use.
func contextAround(body string, pos int) (title, company, location string) {
	head := body[:pos]
	lines := strings.Split(head, "\n")

	var picked []string
	for i := len(lines) - 1; i >= 0 && len(picked) < 3; i-- {
		l := strings.TrimSpace(stripHTMLTags(lines[i]))
		// skip blanks, bare links and leftover markup fragments
		if l == "" || strings.Contains(l, "http") || strings.ContainsAny(l, "<>") {
			continue
		}
		picked = append(picked, l)
	}
	if len(picked) > 0 {
		title = picked[len(picked)-1]
	}
	if len(picked) > 1 {
		company = picked[len(picked)-2]
	}
	if len(picked) > 2 {
		location = picked[0]
	}
	return title, company, location
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(s string) string {
	return htmlTagRe.ReplaceAllString(s, " ")
}

func stripTracking(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
