package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
)

// StartSession persists a new active scraping session row. The at-most-one
// active session per platform invariant is enforced by the governor; the
// store just records it.
func (s *Store) StartSession(ctx context.Context, platform, fingerprint string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO scraping_sessions (platform, fingerprint, started_at, status)
VALUES (?, ?, ?, ?);`,
		platform, fingerprint, fmtTime(s.now()), domain.SessionActive)
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	return res.LastInsertId()
}

// EndSession closes a session with its final request count and status.
func (s *Store) EndSession(ctx context.Context, id int64, status string, requestCount int) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE scraping_sessions
SET status = ?, request_count = ?, ended_at = ?
WHERE id = ?;`,
		status, requestCount, fmtTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("end session %d: %w", id, err)
	}
	return nil
}

// HasActiveSession reports whether a platform has an unfinished session row,
// e.g. from a run that was killed mid-burst.
func (s *Store) HasActiveSession(ctx context.Context, platform string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM scraping_sessions WHERE platform = ? AND status = ? LIMIT 1;`,
		platform, domain.SessionActive).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CloseStaleSessions fails any sessions still marked active from a previous
// interrupted run, so new sessions can open.
func (s *Store) CloseStaleSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE scraping_sessions SET status = ?, ended_at = ? WHERE status = ?;`,
		domain.SessionFailed, fmtTime(s.now()), domain.SessionActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
