package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobpilot-engine/internal/domain"
)

// CreateApplication records a submission. FollowUpDue is derived from
// followUpDays when the application goes out as submitted.
func (s *Store) CreateApplication(ctx context.Context, a domain.Application, followUpDays int) (int64, error) {
	now := s.now()
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = now
	}
	if a.Status == "" {
		a.Status = domain.AppPending
	}

	var followUpDue any
	if a.Status == domain.AppSubmitted && followUpDays > 0 {
		followUpDue = fmtTime(a.SubmittedAt.AddDate(0, 0, followUpDays))
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO applications (posting_id, status, method, cover_letter_ref, resume_ref,
  notes, submitted_at, follow_up_due)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		a.PostingID, a.Status, a.Method, a.CoverLetterRef, a.ResumeRef,
		a.Notes, fmtTime(a.SubmittedAt), followUpDue,
	)
	if err != nil {
		return 0, fmt.Errorf("create application: %w", err)
	}
	return res.LastInsertId()
}

func scanApplication(row interface{ Scan(...any) error }) (domain.Application, error) {
	var a domain.Application
	var submittedAt string
	var followUpDue, responseAt sql.NullString
	var followUpSent int
	err := row.Scan(
		&a.ID, &a.PostingID, &a.Status, &a.Method, &a.CoverLetterRef,
		&a.ResumeRef, &a.Notes, &submittedAt, &followUpDue, &followUpSent,
		&responseAt, &a.ResponseType,
	)
	if err != nil {
		return a, err
	}
	a.SubmittedAt = parseTime(submittedAt)
	a.FollowUpDue = parseTimePtr(followUpDue)
	a.FollowUpSent = followUpSent != 0
	a.ResponseAt = parseTimePtr(responseAt)
	return a, nil
}

const applicationCols = `id, posting_id, status, method, cover_letter_ref, resume_ref,
notes, submitted_at, follow_up_due, follow_up_sent, response_at, response_type`

// ActiveApplication returns the newest non-terminal application for a
// posting, or false when there is none (a rejected application does not block
// re-applying).
func (s *Store) ActiveApplication(ctx context.Context, postingID int64) (domain.Application, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM applications
WHERE posting_id = ? AND status != ?
ORDER BY id DESC LIMIT 1;`, applicationCols),
		postingID, domain.AppRejected)

	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, false, nil
	}
	if err != nil {
		return domain.Application{}, false, err
	}
	return a, true, nil
}

// UpdateApplicationStatus advances an application. Transitions only move
// forward; rejected is terminal from any state. Response-type statuses set
// the response timestamp.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, status, notes string) error {
	var current string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = ?;`, id).Scan(&current)
	if err != nil {
		return fmt.Errorf("application %d: %w", id, err)
	}
	if !domain.CanAdvanceTo(current, status) {
		return fmt.Errorf("application %d: illegal transition %s -> %s", id, current, status)
	}

	var responseAt any
	var responseType string
	switch status {
	case domain.AppRejected, domain.AppInterview, domain.AppOffer, domain.AppViewed:
		responseAt = fmtTime(s.now())
		responseType = status
	}

	_, err = s.db.ExecContext(ctx, `
UPDATE applications
SET status = ?,
    notes = CASE WHEN ? != '' THEN ? ELSE notes END,
    response_at = COALESCE(?, response_at),
    response_type = CASE WHEN ? != '' THEN ? ELSE response_type END
WHERE id = ?;`,
		status, notes, notes, responseAt, responseType, responseType, id)
	if err != nil {
		return fmt.Errorf("update application %d: %w", id, err)
	}
	return nil
}

// FollowUpRow joins an overdue application with its posting for display.
type FollowUpRow struct {
	Application domain.Application
	Title       string
	Company     string
	Platform    string
}

// ApplicationsNeedingFollowUp returns submitted applications whose follow-up
// date has passed and that have not been followed up yet.
func (s *Store) ApplicationsNeedingFollowUp(ctx context.Context) ([]FollowUpRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.id, a.posting_id, a.status, a.method, a.cover_letter_ref, a.resume_ref,
       a.notes, a.submitted_at, a.follow_up_due, a.follow_up_sent, a.response_at,
       a.response_type, p.title, p.company, p.platform
FROM applications a
JOIN postings p ON p.id = a.posting_id
WHERE a.status = ?
  AND a.follow_up_due IS NOT NULL
  AND a.follow_up_due <= ?
  AND a.follow_up_sent = 0
ORDER BY a.id ASC;`,
		domain.AppSubmitted, fmtTime(s.now()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FollowUpRow
	for rows.Next() {
		var r FollowUpRow
		var submittedAt string
		var followUpDue, responseAt sql.NullString
		var followUpSent int
		err := rows.Scan(
			&r.Application.ID, &r.Application.PostingID, &r.Application.Status,
			&r.Application.Method, &r.Application.CoverLetterRef, &r.Application.ResumeRef,
			&r.Application.Notes, &submittedAt, &followUpDue, &followUpSent,
			&responseAt, &r.Application.ResponseType,
			&r.Title, &r.Company, &r.Platform,
		)
		if err != nil {
			return nil, err
		}
		r.Application.SubmittedAt = parseTime(submittedAt)
		r.Application.FollowUpDue = parseTimePtr(followUpDue)
		r.Application.FollowUpSent = followUpSent != 0
		r.Application.ResponseAt = parseTimePtr(responseAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) MarkFollowUpSent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE applications SET follow_up_sent = 1 WHERE id = ?;`, id)
	return err
}

// ApplicationStats summarizes submission outcomes for reporting.
type ApplicationStats struct {
	Total        int
	ByStatus     map[string]int
	Today        int
	Responded    int
	ResponseRate float64
}

func (s *Store) ApplicationStats(ctx context.Context) (ApplicationStats, error) {
	st := ApplicationStats{ByStatus: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status;`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return st, err
		}
		st.ByStatus[k] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	today := s.now().UTC().Format("2006-01-02")
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE date(submitted_at) = ?;`, today,
	).Scan(&st.Today); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE response_at IS NOT NULL;`,
	).Scan(&st.Responded); err != nil {
		return st, err
	}
	if st.Total > 0 {
		st.ResponseRate = float64(st.Responded) / float64(st.Total) * 100
	}
	return st, nil
}
