package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Settings is the singleton process configuration row. The YAML config is the
// source of truth; SyncSettings mirrors it here at startup so the dashboard
// and ReadSettings see the same values the run used.
type Settings struct {
	DailyApplicationLimit int
	MinRelevanceScore     float64
	AutoApplyEnabled      bool
	FollowUpDays          int
	EnabledPlatforms      []string
	DelayMinSeconds       float64
	DelayMaxSeconds       float64
	MaxRequestsPerSession int
	SessionBreakSeconds   int
	UpdatedAt             time.Time
}

func (s *Store) SyncSettings(ctx context.Context, v Settings) error {
	platforms, _ := json.Marshal(v.EnabledPlatforms)
	auto := 0
	if v.AutoApplyEnabled {
		auto = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings (id, daily_application_limit, min_relevance_score, auto_apply_enabled,
  follow_up_days, enabled_platforms, delay_min_seconds, delay_max_seconds,
  max_requests_per_session, session_break_duration, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  daily_application_limit = excluded.daily_application_limit,
  min_relevance_score = excluded.min_relevance_score,
  auto_apply_enabled = excluded.auto_apply_enabled,
  follow_up_days = excluded.follow_up_days,
  enabled_platforms = excluded.enabled_platforms,
  delay_min_seconds = excluded.delay_min_seconds,
  delay_max_seconds = excluded.delay_max_seconds,
  max_requests_per_session = excluded.max_requests_per_session,
  session_break_duration = excluded.session_break_duration,
  updated_at = excluded.updated_at;`,
		v.DailyApplicationLimit, v.MinRelevanceScore, auto, v.FollowUpDays,
		string(platforms), v.DelayMinSeconds, v.DelayMaxSeconds,
		v.MaxRequestsPerSession, v.SessionBreakSeconds, fmtTime(s.now()))
	if err != nil {
		return fmt.Errorf("sync settings: %w", err)
	}
	return nil
}

func (s *Store) ReadSettings(ctx context.Context) (Settings, error) {
	var v Settings
	var platforms, updatedAt string
	var auto int
	err := s.db.QueryRowContext(ctx, `
SELECT daily_application_limit, min_relevance_score, auto_apply_enabled, follow_up_days,
  enabled_platforms, delay_min_seconds, delay_max_seconds, max_requests_per_session,
  session_break_duration, updated_at
FROM settings WHERE id = 1;`).Scan(
		&v.DailyApplicationLimit, &v.MinRelevanceScore, &auto, &v.FollowUpDays,
		&platforms, &v.DelayMinSeconds, &v.DelayMaxSeconds, &v.MaxRequestsPerSession,
		&v.SessionBreakSeconds, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, fmt.Errorf("settings not initialized")
	}
	if err != nil {
		return Settings{}, err
	}
	v.AutoApplyEnabled = auto != 0
	_ = json.Unmarshal([]byte(platforms), &v.EnabledPlatforms)
	v.UpdatedAt = parseTime(updatedAt)
	return v, nil
}
