package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CoverLetter is a generated letter artifact reference.
type CoverLetter struct {
	ID          int64
	PostingID   int64
	FilePath    string
	Language    string
	Content     string
	Keywords    []string
	GeneratedAt time.Time
}

func (s *Store) InsertCoverLetter(ctx context.Context, l CoverLetter) (int64, error) {
	keywords, _ := json.Marshal(l.Keywords)
	res, err := s.db.ExecContext(ctx, `
INSERT INTO cover_letters (posting_id, file_path, language, content, keywords, generated_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		l.PostingID, l.FilePath, l.Language, l.Content, string(keywords), fmtTime(s.now()))
	if err != nil {
		return 0, fmt.Errorf("insert cover letter: %w", err)
	}
	return res.LastInsertId()
}

// LatestCoverLetter returns the newest letter for a posting, or false when
// none has been generated yet.
func (s *Store) LatestCoverLetter(ctx context.Context, postingID int64) (CoverLetter, bool, error) {
	var l CoverLetter
	var keywords, generatedAt string
	err := s.db.QueryRowContext(ctx, `
SELECT id, posting_id, file_path, language, content, keywords, generated_at
FROM cover_letters WHERE posting_id = ? ORDER BY id DESC LIMIT 1;`,
		postingID).Scan(&l.ID, &l.PostingID, &l.FilePath, &l.Language, &l.Content, &keywords, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CoverLetter{}, false, nil
	}
	if err != nil {
		return CoverLetter{}, false, err
	}
	_ = json.Unmarshal([]byte(keywords), &l.Keywords)
	l.GeneratedAt = parseTime(generatedAt)
	return l, true, nil
}
