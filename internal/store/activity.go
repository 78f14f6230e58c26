package store

import (
	"context"
	"fmt"
	"time"
)

// Activity outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeWarning = "warning"
)

// ActivityEntry is one append-only audit record. Never mutated.
type ActivityEntry struct {
	ID        int64
	Component string
	Action    string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// AppendActivity writes an audit record. All pipeline outcomes, including
// errors and quota warnings, go through here; no silent failures.
func (s *Store) AppendActivity(ctx context.Context, component, action, outcome, detail string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO activity_log (component, action, outcome, detail, created_at)
VALUES (?, ?, ?, ?, ?);`,
		component, action, outcome, detail, fmtTime(s.now()))
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *Store) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, component, action, outcome, detail, created_at
FROM activity_log ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Component, &e.Action, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
