package emailalert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAlert = `
Your job alert for data analyst

Data Analyst Intern
Acme Analytics
Paris, France
https://www.example.com/jobs/view/4012345678?refId=abc&trackingId=xyz

Junior Data Scientist
Beta Labs
Lyon
<a href="https://www.example.com/jobs/view/4019876543?refId=def">View job</a>

See all jobs: https://www.example.com/jobs/search
`

func TestParseAlertBody(t *testing.T) {
	received := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)

	postings := parseAlertBody("linkedin_alerts", sampleAlert, received)
	require.Len(t, postings, 2)

	first := postings[0]
	assert.Equal(t, "4012345678", first.ExternalID)
	assert.Equal(t, "Data Analyst Intern", first.Title)
	assert.Equal(t, "Acme Analytics", first.Company)
	assert.Equal(t, "Paris, France", first.Location)
	assert.Equal(t, "linkedin_alerts", first.Platform)
	assert.Equal(t, "https://www.example.com/jobs/view/4012345678", first.ApplyURL)
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, received, *first.PostedAt)

	second := postings[1]
	assert.Equal(t, "4019876543", second.ExternalID)
	assert.Equal(t, "Junior Data Scientist", second.Title)
	assert.Equal(t, "Beta Labs", second.Company)
}

func TestParseAlertBodyDeduplicates(t *testing.T) {
	body := `
Data Analyst
Acme
Paris
https://www.example.com/jobs/view/111?a=1
https://www.example.com/jobs/view/111?a=2
`
	postings := parseAlertBody("p", body, time.Now())
	assert.Len(t, postings, 1)
}

func TestParseAlertBodyNoLinks(t *testing.T) {
	assert.Empty(t, parseAlertBody("p", "nothing to see here", time.Now()))
}

func TestSubjectMatches(t *testing.T) {
	assert.True(t, subjectMatches("anything", nil))
	assert.True(t, subjectMatches("Your Job Alert: 12 new jobs", []string{"job alert"}))
	assert.False(t, subjectMatches("Invoice overdue", []string{"job alert", "new jobs for you"}))
}
