package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAdvanceTo(t *testing.T) {
	assert.True(t, CanAdvanceTo(AppPending, AppSubmitted))
	assert.True(t, CanAdvanceTo(AppSubmitted, AppViewed))
	assert.True(t, CanAdvanceTo(AppSubmitted, AppOffer)) // skipping stages is fine
	assert.True(t, CanAdvanceTo(AppViewed, AppRejected))
	assert.True(t, CanAdvanceTo(AppPending, AppRejected))

	assert.False(t, CanAdvanceTo(AppViewed, AppSubmitted)) // no going back
	assert.False(t, CanAdvanceTo(AppOffer, AppOffer))
	assert.False(t, CanAdvanceTo(AppRejected, AppRejected))
	assert.False(t, CanAdvanceTo(AppRejected, AppSubmitted))
	assert.False(t, CanAdvanceTo("bogus", AppViewed))
	assert.False(t, CanAdvanceTo(AppPending, "bogus"))
}

func TestApplicationTerminal(t *testing.T) {
	assert.True(t, Application{Status: AppRejected}.Terminal())
	assert.False(t, Application{Status: AppOffer}.Terminal())
}

func TestRawPostingValidate(t *testing.T) {
	good := RawPosting{ExternalID: "x1", Platform: "board_a", Title: "Data Analyst"}
	require.NoError(t, good.Validate())

	for name, bad := range map[string]RawPosting{
		"missing id":       {Platform: "board_a", Title: "Data Analyst"},
		"missing platform": {ExternalID: "x1", Title: "Data Analyst"},
		"missing title":    {ExternalID: "x1", Platform: "board_a"},
		"blank title":      {ExternalID: "x1", Platform: "board_a", Title: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, bad.Validate(), ErrInvalidPosting)
		})
	}
}

func TestSearchTextSkipsEmptyFields(t *testing.T) {
	p := Posting{Title: "Data Analyst", Company: "Acme", Location: " "}
	assert.Equal(t, "Data Analyst Acme", p.SearchText())
}
