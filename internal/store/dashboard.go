package store

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	"jobpilot-engine/internal/domain"
)

// DashboardSnapshot is the read-only aggregate the UI layer consumes. This is
// the only query surface the dashboard gets.
type DashboardSnapshot struct {
	StageCounts          map[string]int
	TotalPostings        int
	TotalApplications    int
	RecentPostings       []domain.Posting
	RecentApplications   []FollowUpRow
	RecentActivity       []ActivityEntry
	PlatformDistribution map[string]int
	Applications         ApplicationStats
}

// Snapshot gathers the dashboard aggregate. The reads are independent, so
// they fan out; nothing here writes.
func (s *Store) Snapshot(ctx context.Context) (DashboardSnapshot, error) {
	var snap DashboardSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.StatusCounts(gctx)
		if err != nil {
			return err
		}
		snap.StageCounts = counts
		for _, n := range counts {
			snap.TotalPostings += n
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.RecentPostings, err = s.RecentPostings(gctx, 10)
		return err
	})
	g.Go(func() error {
		var err error
		snap.RecentActivity, err = s.RecentActivity(gctx, 20)
		return err
	})
	g.Go(func() error {
		var err error
		snap.PlatformDistribution, err = s.PlatformDistribution(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Applications, err = s.ApplicationStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.RecentApplications, err = s.recentApplications(gctx, 10)
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardSnapshot{}, err
	}
	snap.TotalApplications = snap.Applications.Total
	return snap, nil
}

func (s *Store) recentApplications(ctx context.Context, limit int) ([]FollowUpRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.id, a.posting_id, a.status, a.method, a.cover_letter_ref, a.resume_ref,
       a.notes, a.submitted_at, a.follow_up_due, a.follow_up_sent, a.response_at,
       a.response_type, p.title, p.company, p.platform
FROM applications a
JOIN postings p ON p.id = a.posting_id
ORDER BY a.id DESC LIMIT ?;`, limit)
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
