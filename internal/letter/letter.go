// Package letter renders personalized cover letters from templates. Letters
// are plain text so applicant tracking systems parse them cleanly.
package letter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"jobpilot-engine/internal/domain"
)

// Renderer produces a letter body plus metadata for a posting.
type Renderer interface {
	Render(p domain.Posting, profile domain.Profile, now time.Time) (Letter, error)
}

type Letter struct {
	Language string
	Content  string
	Keywords []string
}

// vars is the data handed to the letter templates.
type vars struct {
	UserName     string
	UserEmail    string
	UserPhone    string
	Date         string
	CompanyName  string
	JobTitle     string
	JobType      string
	CurrentStudy string

	SkillsParagraph     string
	MotivationParagraph string
	CompanyParagraph    string
}

// TemplateRenderer fills text/template files, one per language. When a
// language has no file in the template dir the built-in default is used.
type TemplateRenderer struct {
	templates map[string]*template.Template
	language  string // "auto", "fr" or "en"
}

func NewTemplateRenderer(templateDir, language string) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		templates: make(map[string]*template.Template),
		language:  language,
	}
	for lang, fallback := range map[string]string{"fr": defaultFR, "en": defaultEN} {
		text := fallback
		if templateDir != "" {
			b, err := os.ReadFile(filepath.Join(templateDir, "cover_letter_"+lang+".tmpl"))
			if err == nil {
				text = string(b)
			} else if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read %s template: %w", lang, err)
			}
		}
		t, err := template.New(lang).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", lang, err)
		}
		r.templates[lang] = t
	}
	return r, nil
}

func (r *TemplateRenderer) Render(p domain.Posting, profile domain.Profile, now time.Time) (Letter, error) {
	lang := r.language
	if lang == "" || lang == "auto" {
		lang = DetectLanguage(p)
	}
	t, ok := r.templates[lang]
	if !ok {
		t = r.templates["en"]
		lang = "en"
	}

	keywords := extractKeywords(p, profile)

	v := vars{
		UserName:            profile.FullName,
		UserEmail:           profile.Email,
		UserPhone:           profile.Phone,
		Date:                now.Format("02/01/2006"),
		CompanyName:         p.Company,
		JobTitle:            p.Title,
		JobType:             jobType(p, lang),
		CurrentStudy:        profile.CurrentStudy,
		SkillsParagraph:     skillsParagraph(profile, keywords, lang),
		MotivationParagraph: motivationParagraph(p, lang),
		CompanyParagraph:    companyParagraph(p, lang),
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return Letter{}, fmt.Errorf("render letter for posting %d: %w", p.ID, err)
	}

	return Letter{
		Language: lang,
		Content:  tidy(buf.String()),
		Keywords: keywords,
	}, nil
}

// ArtifactName builds a unique filename for a letter on disk.
func ArtifactName(postingID int64, lang string) string {
	return fmt.Sprintf("cover_letter_%d_%s_%s.txt", postingID, lang, uuid.NewString()[:8])
}

// Write saves the rendered letter under dir and returns its path.
func Write(dir string, name string, l Letter) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create letter dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(l.Content), 0o644); err != nil {
		return "", fmt.Errorf("write letter: %w", err)
	}
	return path, nil
}

var frenchWords = []string{
	"le", "la", "les", "et", "pour", "des", "une", "dans", "est", "que",
	"alternance", "stage", "poste", "profil", "compétences", "mission",
}

var englishWords = []string{
	"the", "and", "for", "with", "are", "you", "will", "job", "position",
	"skills", "requirements", "experience", "work",
}

var frenchCities = []string{"france", "paris", "lyon", "marseille", "bordeaux"}

// DetectLanguage guesses fr/en from indicator-word counts in the posting
// text, with a location tiebreaker toward French cities.
func DetectLanguage(p domain.Posting) string {
	text := " " + strings.ToLower(p.Title+" "+p.Description+" "+p.Requirements) + " "

	var fr, en int
	for _, w := range frenchWords {
		if strings.Contains(text, " "+w+" ") {
			fr++
		}
	}
	for _, w := range englishWords {
		if strings.Contains(text, " "+w+" ") {
			en++
		}
	}
	loc := strings.ToLower(p.Location)
	for _, city := range frenchCities {
		if strings.Contains(loc, city) {
			fr += 3
			break
		}
	}
	if fr > en {
		return "fr"
	}
	return "en"
}

// extractKeywords returns the profile skills that appear in the posting text,
// so the letter mentions what the listing actually asks for.
func extractKeywords(p domain.Posting, profile domain.Profile) []string {
	text := strings.ToLower(p.SearchText())
	var found []string
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(skill)) {
			found = append(found, skill)
		}
		if len(found) == 15 {
			break
		}
	}
	return found
}

func jobType(p domain.Posting, lang string) string {
	if p.ContractType != "" {
		return p.ContractType
	}
	if lang == "fr" {
		return "alternance"
	}
	return "internship"
}

func skillsParagraph(profile domain.Profile, keywords []string, lang string) string {
	skills := keywords
	if len(skills) == 0 && len(profile.Skills) > 0 {
		skills = profile.Skills
	}
	if len(skills) > 3 {
		skills = skills[:3]
	}
	if lang == "fr" {
		if len(skills) == 0 {
			return "Ma formation m'a permis d'acquérir une solide base technique et une méthodologie rigoureuse."
		}
		return fmt.Sprintf(
			"Au cours de ma formation, j'ai développé des compétences solides en %s. Je maîtrise également les outils et technologies essentiels pour ce poste.",
			joinList(skills, " et "))
	}
	if len(skills) == 0 {
		return "My academic background has provided me with a solid technical foundation and rigorous methodology."
	}
	return fmt.Sprintf(
		"Throughout my studies, I have developed strong skills in %s. I am also proficient in the essential tools and technologies required for this position.",
		joinList(skills, " and "))
}

func motivationParagraph(p domain.Posting, lang string) string {
	title := strings.ToLower(p.Title)
	switch {
	case strings.Contains(title, "quant"):
		if lang == "fr" {
			return "Passionné par la finance quantitative et les mathématiques appliquées, je suis particulièrement intéressé par l'utilisation de modèles statistiques et du machine learning pour résoudre des problématiques financières complexes."
		}
		return "Passionate about quantitative finance and applied mathematics, I am particularly interested in using statistical models and machine learning to solve complex financial challenges."
	case strings.Contains(title, "deep learning") || strings.Contains(title, "nlp"):
		if lang == "fr" {
			return "Fasciné par les avancées récentes en intelligence artificielle, je souhaite approfondir mes connaissances en deep learning et contribuer à des projets innovants dans ce domaine."
		}
		return "Fascinated by recent advances in artificial intelligence, I am eager to deepen my knowledge in deep learning and contribute to innovative projects in this field."
	default:
		if lang == "fr" {
			return "Passionné par l'analyse de données et le machine learning, je suis motivé à l'idée de mettre mes compétences au service de projets concrets et de continuer à apprendre auprès de professionnels expérimentés."
		}
		return "Passionate about data analysis and machine learning, I am motivated to apply my skills to real-world projects and continue learning from experienced professionals."
	}
}

func companyParagraph(p domain.Posting, lang string) string {
	desc := strings.ToLower(p.Description)
	var values []string
	if strings.Contains(desc, "innovation") {
		values = append(values, "innovation")
	}
	if strings.Contains(desc, "research") || strings.Contains(desc, "recherche") {
		if lang == "fr" {
			values = append(values, "recherche")
		} else {
			values = append(values, "research")
		}
	}
	if strings.Contains(desc, "team") || strings.Contains(desc, "équipe") {
		if lang == "fr" {
			values = append(values, "travail d'équipe")
		} else {
			values = append(values, "teamwork")
		}
	}

	if lang == "fr" {
		if len(values) > 0 {
			return fmt.Sprintf(
				"Ce qui m'attire particulièrement chez %s, c'est votre engagement envers l'%s et votre volonté de repousser les limites de ce qui est possible. Je suis convaincu que mon profil et ma motivation correspondront à vos attentes.",
				p.Company, strings.Join(values, ", "))
		}
		return fmt.Sprintf(
			"Je suis particulièrement intéressé par l'opportunité de rejoindre %s et de contribuer à vos projets ambitieux. Je suis convaincu que mon profil et ma motivation correspondront à vos attentes.",
			p.Company)
	}
	if len(values) > 0 {
		return fmt.Sprintf(
			"What particularly attracts me to %s is your commitment to %s and your drive to push the boundaries of what is possible. I am confident that my profile and motivation will meet your expectations.",
			p.Company, strings.Join(values, ", "))
	}
	return fmt.Sprintf(
		"I am particularly interested in the opportunity to join %s and contribute to your ambitious projects. I am confident that my profile and motivation will meet your expectations.",
		p.Company)
}

func joinList(items []string, lastSep string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + lastSep + items[len(items)-1]
}

var atsUnsafe = regexp.MustCompile(`[^\w\sÀ-ÿ\-\.@,\(\)':/\n]`)

// tidy strips characters that trip up resume parsers and normalizes blank
// lines between paragraphs.
func tidy(s string) string {
	s = atsUnsafe.ReplaceAllString(s, "")
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n\n")
}

const defaultFR = `{{.UserName}}
{{.UserEmail}}
{{.UserPhone}}
{{.Date}}

À l'attention du service Recrutement
{{.CompanyName}}

Objet : Candidature pour le poste de {{.JobTitle}}

Madame, Monsieur,

Étudiant en {{.CurrentStudy}}, je suis à la recherche d'une {{.JobType}}. Votre offre de {{.JobTitle}} chez {{.CompanyName}} a retenu toute mon attention car elle correspond parfaitement à mon projet professionnel.

{{.SkillsParagraph}}

{{.MotivationParagraph}}

{{.CompanyParagraph}}

Je serais ravi de pouvoir échanger avec vous lors d'un entretien pour vous présenter ma motivation et mes compétences. Je reste à votre disposition pour toute information complémentaire.

Dans l'attente de votre retour, je vous prie d'agréer, Madame, Monsieur, l'expression de mes salutations distinguées.

{{.UserName}}
`

const defaultEN = `{{.UserName}}
{{.UserEmail}}
{{.UserPhone}}
{{.Date}}

Hiring Manager
{{.CompanyName}}

Subject: Application for {{.JobTitle}}

Dear Hiring Manager,

I am writing to express my strong interest in the {{.JobTitle}} position at {{.CompanyName}}. As a {{.CurrentStudy}} student, I am seeking a {{.JobType}} opportunity.

{{.SkillsParagraph}}

{{.MotivationParagraph}}

{{.CompanyParagraph}}

I would welcome the opportunity to discuss how my background and skills align with your needs. Thank you for considering my application.

Sincerely,

{{.UserName}}
`
