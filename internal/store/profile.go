package store

import (
	"context"
	"encoding/json"
	"fmt"

	"jobpilot-engine/internal/domain"
)

// SyncProfile mirrors the configured user profile into its singleton row.
// Typed value objects in memory; JSON only at this storage boundary.
func (s *Store) SyncProfile(ctx context.Context, p domain.Profile) error {
	skills, _ := json.Marshal(p.Skills)
	education, _ := json.Marshal(p.Education)
	languages, _ := json.Marshal(p.Languages)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_profile (id, full_name, email, phone, linkedin_url, portfolio_url,
  github_url, current_study, skills, education, languages, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  full_name = excluded.full_name,
  email = excluded.email,
  phone = excluded.phone,
  linkedin_url = excluded.linkedin_url,
  portfolio_url = excluded.portfolio_url,
  github_url = excluded.github_url,
  current_study = excluded.current_study,
  skills = excluded.skills,
  education = excluded.education,
  languages = excluded.languages,
  updated_at = excluded.updated_at;`,
		p.FullName, p.Email, p.Phone, p.LinkedInURL, p.PortfolioURL,
		p.GitHubURL, p.CurrentStudy, string(skills), string(education),
		string(languages), fmtTime(s.now()))
	if err != nil {
		return fmt.Errorf("sync profile: %w", err)
	}
	return nil
}
