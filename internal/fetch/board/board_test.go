package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/fetch"
)

type noopPacer struct{}

func (noopPacer) Throttle(ctx context.Context, platform string) error { return nil }
func (noopPacer) Fingerprint(platform string) string                  { return "test-agent" }

func TestFetchBoard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="/jobs/123">Data Analyst Intern</a>
			<a href="/jobs/123?ref=email">Data Analyst Intern</a>
			<a href="/jobs/456">View job</a>
			<a href="/about">About us</a>
		</body></html>`))
	})
	mux.HandleFunc("/jobs/123", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Data Analyst Intern</h1>
			<span class="location">Paris, France</span>
			<span class="company-name">Acme Analytics</span>
			<article>Reporting and dashboards with SQL.</article>
			<time datetime="2026-08-28T00:00:00Z">2 days ago</time>
		</body></html>`))
	})
	mux.HandleFunc("/jobs/456", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Junior Data Scientist</h1>
			<span class="location">Lyon</span>
			<article>Modeling work.</article>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(noopPacer{})
	got, err := f.Fetch(context.Background(), fetch.Query{
		Platform:    "board_a",
		BoardURLs:   []string{srv.URL},
		MaxPostings: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "123", first.ExternalID)
	assert.Equal(t, "board_a", first.Platform)
	assert.Equal(t, "Data Analyst Intern", first.Title)
	assert.Equal(t, "Paris, France", first.Location)
	assert.Equal(t, "Acme Analytics", first.Company)
	assert.Equal(t, "Reporting and dashboards with SQL.", first.Description)
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, 28, first.PostedAt.Day())

	// anchor text was junk, so the title comes from the detail page
	second := got[1]
	assert.Equal(t, "456", second.ExternalID)
	assert.Equal(t, "Junior Data Scientist", second.Title)
}

func TestFetchBlockedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(noopPacer{})
	_, err := f.Fetch(context.Background(), fetch.Query{
		Platform:  "board_a",
		BoardURLs: []string{srv.URL},
	})
	assert.ErrorIs(t, err, fetch.ErrBlocked)
}

func TestExternalID(t *testing.T) {
	assert.Equal(t, "123", externalID("https://x.example/jobs/123"))
	assert.Equal(t, "123", externalID("https://x.example/jobs/123?ref=a#top"))
	assert.Equal(t, "eng/456", externalID("https://x.example/careers/eng/456/"))
	assert.Equal(t, "", externalID("https://x.example/about"))
	assert.Equal(t, "", externalID("https://x.example/jobs/"))
}

func TestBaseOf(t *testing.T) {
	assert.Equal(t, "https://x.example", baseOf("https://x.example/jobs?page=2"))
	assert.Equal(t, "https://x.example", baseOf("https://x.example"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Data Analyst", cleanText("  Data \n\t Analyst  "))
}

func TestLooksLikeJunkTitle(t *testing.T) {
	assert.True(t, looksLikeJunkTitle("View job"))
	assert.True(t, looksLikeJunkTitle("Apply now"))
	assert.True(t, looksLikeJunkTitle("See all openings"))
	assert.True(t, looksLikeJunkTitle(""))
	assert.False(t, looksLikeJunkTitle("Data Analyst Intern"))
}
