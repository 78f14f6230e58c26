package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
)

// ErrConflict means a posting transition's precondition did not match the
// stored status. The caller skips the posting this run.
var ErrConflict = errors.New("posting status conflict")

// UpsertPosting inserts a posting or, when (platform, external_id) already
// exists, refreshes its content fields. Status, score and timestamps of the
// existing row are preserved so a re-scrape never rewinds the state machine.
// Returns the row id and whether a new row was created.
func (s *Store) UpsertPosting(ctx context.Context, r domain.RawPosting) (int64, bool, error) {
	if err := r.Validate(); err != nil {
		return 0, false, err
	}

	now := fmtTime(s.now())
	var postedAt any
	if r.PostedAt != nil {
		postedAt = fmtTime(*r.PostedAt)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO postings (platform, external_id, title, company, location, description,
  requirements, salary_range, contract_type, experience_level, posted_at,
  apply_url, payload, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(platform, external_id) DO UPDATE SET
  title = excluded.title,
  company = excluded.company,
  location = excluded.location,
  description = excluded.description,
  requirements = excluded.requirements,
  salary_range = excluded.salary_range,
  contract_type = excluded.contract_type,
  experience_level = excluded.experience_level,
  posted_at = excluded.posted_at,
  apply_url = excluded.apply_url,
  payload = excluded.payload,
  updated_at = excluded.updated_at;`,
		r.Platform, r.ExternalID, r.Title, r.Company, r.Location, r.Description,
		r.Requirements, r.SalaryRange, r.ContractType, r.ExperienceLevel, postedAt,
		r.ApplyURL, r.Payload, domain.StatusScraped, now, now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("upsert posting: %w", err)
	}

	// changes() can't tell insert from update across an upsert, so read the
	// row back and compare created_at.
	var id int64
	var createdAt string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM postings WHERE platform = ? AND external_id = ?;`,
		r.Platform, r.ExternalID,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, false, fmt.Errorf("upsert posting readback: %w", err)
	}
	return id, createdAt == now, nil
}

const postingCols = `id, platform, external_id, title, company, location, description,
requirements, salary_range, contract_type, experience_level, posted_at,
apply_url, payload, status, score, breakdown, created_at, updated_at`

func scanPosting(row interface{ Scan(...any) error }) (domain.Posting, error) {
	var p domain.Posting
	var postedAt sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&p.ID, &p.Platform, &p.ExternalID, &p.Title, &p.Company, &p.Location,
		&p.Description, &p.Requirements, &p.SalaryRange, &p.ContractType,
		&p.ExperienceLevel, &postedAt, &p.ApplyURL, &p.Payload, &p.Status,
		&p.Score, &p.Breakdown, &createdAt, &updatedAt,
	)
	if err != nil {
		return p, err
	}
	p.PostedAt = parseTimePtr(postedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// PostingsByStatus returns postings in ascending id order so stage runs are
// stable and reproducible. limit <= 0 means no limit.
func (s *Store) PostingsByStatus(ctx context.Context, status string, limit int) ([]domain.Posting, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s FROM postings WHERE status = ? ORDER BY id ASC LIMIT ?;`, postingCols),
		status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPosting(ctx context.Context, id int64) (domain.Posting, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM postings WHERE id = ?;`, postingCols), id)
	return scanPosting(row)
}

// TransitionFields carries the optional fields a stage writes alongside a
// status transition.
type TransitionFields struct {
	Score     *float64
	Breakdown *string
}

// TransitionPosting moves a posting from one status to another in a single
// compare-and-set update. If the stored status no longer matches from, the
// update touches nothing and ErrConflict is returned with the actual status.
func (s *Store) TransitionPosting(ctx context.Context, id int64, from, to string, f TransitionFields) error {
	now := fmtTime(s.now())

	q := `UPDATE postings SET status = ?, updated_at = ?`
	args := []any{to, now}
	if f.Score != nil {
		q += `, score = ?`
		args = append(args, *f.Score)
	}
	if f.Breakdown != nil {
		q += `, breakdown = ?`
		args = append(args, *f.Breakdown)
	}
	if to == domain.StatusApplied {
		q += `, applied_at = ?`
		args = append(args, now)
	}
	q += ` WHERE id = ? AND status = ?;`
	args = append(args, id, from)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("transition posting %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM postings WHERE id = ?;`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("posting %d not found: %w", id, ErrConflict)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("posting %d is %q, wanted %q: %w", id, current, from, ErrConflict)
	}
	return nil
}

// CountAppliedToday counts postings that reached applied status today. This
// is what the daily quota is measured against.
func (s *Store) CountAppliedToday(ctx context.Context) (int, error) {
	today := s.now().UTC().Format("2006-01-02")
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM postings
WHERE status = ? AND applied_at IS NOT NULL AND date(applied_at) = ?;`,
		domain.StatusApplied, today).Scan(&n)
	return n, err
}

// StatusCounts returns posting counts per status.
func (s *Store) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM postings GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// RecentPostings returns the newest postings for the dashboard.
func (s *Store) RecentPostings(ctx context.Context, limit int) ([]domain.Posting, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s FROM postings ORDER BY id DESC LIMIT ?;`, postingCols), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
