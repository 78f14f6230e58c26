package config

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"jobpilot-engine/internal/domain"
)

// Platform holds the search parameters for one job platform.
type Platform struct {
	Enabled bool   `yaml:"enabled"`
	Kind    string `yaml:"kind"` // board | email_alerts

	// board platforms
	BoardURLs []string `yaml:"board_urls"`
	Queries   []string `yaml:"queries"`

	// email_alerts platforms
	IMAPHost         string   `yaml:"imap_host"`
	IMAPPort         int      `yaml:"imap_port"`
	Username         string   `yaml:"username"`
	Mailbox          string   `yaml:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any"`

	MaxPostings int `yaml:"max_postings"`
}

type Config struct {
	App struct {
		DataDir      string `yaml:"data_dir"`
		DocumentsDir string `yaml:"documents_dir"`
	} `yaml:"app"`

	User struct {
		FullName      string   `yaml:"full_name"`
		Email         string   `yaml:"email"`
		Phone         string   `yaml:"phone"`
		LinkedInURL   string   `yaml:"linkedin_url"`
		PortfolioURL  string   `yaml:"portfolio_url"`
		GitHubURL     string   `yaml:"github_url"`
		CurrentStudy  string   `yaml:"current_study"`
		Skills        []string `yaml:"skills"`
		Education     []string `yaml:"education"`
		Languages     []string `yaml:"languages"`
		ContractTypes []string `yaml:"contract_types"`
		SeniorOK      bool     `yaml:"senior_ok"`
		Locations     struct {
			Preferred  []string `yaml:"preferred"`
			Acceptable []string `yaml:"acceptable"`
			RemoteOK   bool     `yaml:"remote_ok"`
		} `yaml:"locations"`
	} `yaml:"user"`

	Search struct {
		KeywordsHigh      []string `yaml:"keywords_high"`
		KeywordsMedium    []string `yaml:"keywords_medium"`
		Exclude           []string `yaml:"exclude"`
		MinRelevanceScore float64  `yaml:"min_relevance_score"`
		FreshnessDays     int      `yaml:"freshness_days"`
		MaxPostingsPerRun int      `yaml:"max_postings_per_run"`
	} `yaml:"search"`

	Platforms map[string]Platform `yaml:"platforms"`

	Application struct {
		DailyLimit   int    `yaml:"daily_application_limit"`
		AutoApply    bool   `yaml:"auto_apply_enabled"`
		FollowUpDays int    `yaml:"follow_up_days"`
		Method       string `yaml:"method"` // manual_queue | form
		Language     string `yaml:"language"`
		TemplateDir  string `yaml:"template_dir"`
		ResumePath   string `yaml:"resume_path"`
	} `yaml:"application"`

	Pacing struct {
		DelayMinSeconds       float64 `yaml:"delay_min_seconds"`
		DelayMaxSeconds       float64 `yaml:"delay_max_seconds"`
		MaxRequestsPerSession int     `yaml:"max_requests_per_session"`
		SessionBreakSeconds   int     `yaml:"session_break_duration"`
	} `yaml:"pacing"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// EnabledPlatforms returns the enabled platform names in stable order, so
// stage runs are reproducible.
func (c Config) EnabledPlatforms() []string {
	var names []string
	for name, p := range c.Platforms {
		if p.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Profile maps the user section onto the domain type every component takes
// explicitly; nothing reads config ambiently.
func (c Config) Profile() domain.Profile {
	u := c.User
	return domain.Profile{
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		LinkedInURL:   u.LinkedInURL,
		PortfolioURL:  u.PortfolioURL,
		GitHubURL:     u.GitHubURL,
		CurrentStudy:  u.CurrentStudy,
		Skills:        u.Skills,
		Education:     u.Education,
		Languages:     u.Languages,
		ContractTypes: u.ContractTypes,
		SeniorOK:      u.SeniorOK,
		Locations: domain.Locations{
			Preferred:  u.Locations.Preferred,
			Acceptable: u.Locations.Acceptable,
			RemoteOK:   u.Locations.RemoteOK,
		},
	}
}
