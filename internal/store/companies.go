package store

import (
	"context"
	"strings"
)

// UpsertCompany tracks a company the first time a posting mentions it.
// Existing rows keep whatever enrichment they already have.
func (s *Store) UpsertCompany(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO companies (name, first_seen) VALUES (?, ?)
ON CONFLICT(name) DO NOTHING;`,
		name, fmtTime(s.now()))
	return err
}

func (s *Store) CompanyCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies;`).Scan(&n)
	return n, err
}
