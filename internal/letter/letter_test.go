package letter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-engine/internal/domain"
)

func testProfile() domain.Profile {
	return domain.Profile{
		FullName:     "Test User",
		Email:        "test@example.com",
		Phone:        "+33 6 12 34 56 78",
		CurrentStudy: "Data Science",
		Skills:       []string{"Python", "SQL", "Machine Learning"},
	}
}

func TestDetectLanguage(t *testing.T) {
	fr := domain.Posting{
		Title:       "Stage Data Analyst",
		Description: "Nous recherchons un stagiaire pour une mission dans le domaine de la data. Le poste est basé dans nos bureaux et les compétences attendues sont solides.",
		Location:    "Paris, France",
	}
	assert.Equal(t, "fr", DetectLanguage(fr))

	en := domain.Posting{
		Title:       "Data Analyst Intern",
		Description: "We are looking for an intern to join the team and work with the data platform. You will learn the skills and tools for the job.",
		Location:    "London",
	}
	assert.Equal(t, "en", DetectLanguage(en))
}

func TestRenderFillsTemplate(t *testing.T) {
	r, err := NewTemplateRenderer("", "en")
	require.NoError(t, err)

	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	p := domain.Posting{
		ID:          42,
		Title:       "Data Analyst Intern",
		Company:     "Acme",
		Description: "Python and SQL work in an innovation-driven team",
	}

	l, err := r.Render(p, testProfile(), now)
	require.NoError(t, err)

	assert.Equal(t, "en", l.Language)
	assert.Contains(t, l.Content, "Test User")
	assert.Contains(t, l.Content, "Acme")
	assert.Contains(t, l.Content, "Data Analyst Intern")
	assert.Contains(t, l.Content, "30/08/2026")
	assert.NotContains(t, l.Content, "{{")
	assert.Contains(t, l.Keywords, "Python")
	assert.Contains(t, l.Keywords, "SQL")
}

func TestRenderAutoDetectsLanguage(t *testing.T) {
	r, err := NewTemplateRenderer("", "auto")
	require.NoError(t, err)

	p := domain.Posting{
		Title:       "Stage Data Analyst",
		Description: "Mission dans le domaine de la data, les compétences pour le poste sont une solide formation.",
		Company:     "Société Générale",
		Location:    "Paris",
	}
	l, err := r.Render(p, testProfile(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "fr", l.Language)
	assert.Contains(t, l.Content, "Madame, Monsieur")
}

func TestTidyNormalizesParagraphs(t *testing.T) {
	out := tidy("Hello*\n\n\n  world!  \n")
	assert.Equal(t, "Hello\n\nworld", out)
}

func TestArtifactNamesAreUnique(t *testing.T) {
	a := ArtifactName(1, "en")
	b := ArtifactName(1, "en")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "cover_letter_1_en_"))
	assert.True(t, strings.HasSuffix(a, ".txt"))
}
