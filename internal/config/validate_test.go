package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAndValidateDefaults(t *testing.T) {
	out, res := NormalizeAndValidate(Config{})

	assert.InDelta(t, 6.0, out.Search.MinRelevanceScore, 1e-9)
	assert.Equal(t, 7, out.Search.FreshnessDays)
	assert.Equal(t, 100, out.Search.MaxPostingsPerRun)
	assert.Equal(t, 30, out.Application.DailyLimit)
	assert.Equal(t, 7, out.Application.FollowUpDays)
	assert.Equal(t, "manual_queue", out.Application.Method)
	assert.Equal(t, "en", out.Application.Language)
	assert.InDelta(t, 2.0, out.Pacing.DelayMinSeconds, 1e-9)
	assert.InDelta(t, 5.0, out.Pacing.DelayMaxSeconds, 1e-9)
	assert.Equal(t, 30, out.Pacing.MaxRequestsPerSession)
	assert.Equal(t, 300, out.Pacing.SessionBreakSeconds)

	// empty config starts, it just warns about everything it can't do
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)
}

func TestNormalizeAndValidateTrimsLists(t *testing.T) {
	var cfg Config
	cfg.Search.KeywordsMedium = []string{" data ", "data", "DATA", "", "sql"}
	cfg.User.Skills = []string{"Python", " python ", "SQL"}

	out, _ := NormalizeAndValidate(cfg)

	assert.Equal(t, []string{"data", "sql"}, out.Search.KeywordsMedium)
	assert.Equal(t, []string{"Python", "SQL"}, out.User.Skills)
}

func TestNormalizeAndValidateRejectsBadPacing(t *testing.T) {
	var cfg Config
	cfg.Pacing.DelayMinSeconds = 10
	cfg.Pacing.DelayMaxSeconds = 3

	_, res := NormalizeAndValidate(cfg)

	require.False(t, res.OK())
	assert.Contains(t, strings.Join(res.Errors, "\n"), "delay_max_seconds")
}

func TestNormalizeAndValidateRejectsScoreOutOfRange(t *testing.T) {
	var cfg Config
	cfg.Search.MinRelevanceScore = 11

	_, res := NormalizeAndValidate(cfg)

	require.False(t, res.OK())
	assert.Contains(t, strings.Join(res.Errors, "\n"), "min_relevance_score")
}

func TestNormalizeAndValidatePlatformKinds(t *testing.T) {
	cfg := Config{Platforms: map[string]Platform{
		"bare_board": {Enabled: true, Kind: "board"},
		"bare_mail":  {Enabled: true, Kind: "email_alerts"},
		"mystery":    {Enabled: true, Kind: "carrier_pigeon"},
		"disabled":   {Enabled: false, Kind: "carrier_pigeon"},
	}}

	_, res := NormalizeAndValidate(cfg)

	joined := strings.Join(res.Errors, "\n")
	assert.Contains(t, joined, "bare_board: board_urls is required")
	assert.Contains(t, joined, "bare_mail: imap_host is required")
	assert.Contains(t, joined, "bare_mail: imap_port is required")
	assert.Contains(t, joined, "bare_mail: username is required")
	assert.Contains(t, joined, "bare_mail: mailbox is required")
	assert.Contains(t, joined, `mystery: unknown kind "carrier_pigeon"`)
	// disabled platforms are never validated
	assert.NotContains(t, joined, "disabled:")
}

func TestNormalizeAndValidateWarnsOnConflictingKeywords(t *testing.T) {
	var cfg Config
	cfg.Search.KeywordsHigh = []string{"machine learning"}
	cfg.Search.Exclude = []string{"Machine Learning"}

	_, res := NormalizeAndValidate(cfg)

	assert.True(t, res.OK())
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "both search and exclude")
}

func TestNormalizeAndValidateWarnsOnHighDailyLimit(t *testing.T) {
	var cfg Config
	cfg.Application.DailyLimit = 80

	_, res := NormalizeAndValidate(cfg)

	assert.True(t, res.OK())
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "80")
}

func TestEnabledPlatformsStableOrder(t *testing.T) {
	cfg := Config{Platforms: map[string]Platform{
		"zeta":  {Enabled: true, Kind: "board"},
		"alpha": {Enabled: true, Kind: "board"},
		"off":   {Enabled: false, Kind: "board"},
	}}
	assert.Equal(t, []string{"alpha", "zeta"}, cfg.EnabledPlatforms())
}
