package store

import (
	"context"
	"fmt"
)

// Platform stat counters. Whitelisted so the column name never comes from
// caller input.
const (
	StatScraped  = "postings_scraped"
	StatAnalyzed = "postings_analyzed"
	StatLetters  = "letters_generated"
	StatApplied  = "applications_sent"
)

var statColumns = map[string]bool{
	StatScraped:  true,
	StatAnalyzed: true,
	StatLetters:  true,
	StatApplied:  true,
}

// BumpPlatformStat increments today's counter for a platform, creating the
// row on first touch.
func (s *Store) BumpPlatformStat(ctx context.Context, platform, stat string, n int) error {
	if !statColumns[stat] {
		return fmt.Errorf("unknown platform stat %q", stat)
	}
	today := s.now().UTC().Format("2006-01-02")
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO platform_stats (date, platform, %s)
VALUES (?, ?, ?)
ON CONFLICT(date, platform) DO UPDATE SET %s = %s + excluded.%s;`,
		stat, stat, stat, stat),
		today, platform, n)
	if err != nil {
		return fmt.Errorf("bump %s for %s: %w", stat, platform, err)
	}
	return nil
}

// PlatformStatRow is one date-platform counter row.
type PlatformStatRow struct {
	Date             string
	Platform         string
	PostingsScraped  int
	PostingsAnalyzed int
	LettersGenerated int
	ApplicationsSent int
}

// PlatformStats returns counters for the last N days, newest first.
func (s *Store) PlatformStats(ctx context.Context, days int) ([]PlatformStatRow, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx, `
SELECT date, platform, postings_scraped, postings_analyzed, letters_generated, applications_sent
FROM platform_stats
WHERE date >= ?
ORDER BY date DESC, platform ASC;`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlatformStatRow
	for rows.Next() {
		var r PlatformStatRow
		if err := rows.Scan(&r.Date, &r.Platform, &r.PostingsScraped,
			&r.PostingsAnalyzed, &r.LettersGenerated, &r.ApplicationsSent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlatformDistribution counts postings per source platform.
func (s *Store) PlatformDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT platform, COUNT(*) FROM postings GROUP BY platform;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		out[p] = n
	}
	return out, rows.Err()
}
