package domain

// Profile is the user the pipeline applies on behalf of. Loaded from config,
// mirrored into the user_profile table for the dashboard.
type Profile struct {
	FullName      string
	Email         string
	Phone         string
	LinkedInURL   string
	PortfolioURL  string
	GitHubURL     string
	CurrentStudy  string
	Skills        []string
	Education     []string
	Languages     []string
	ContractTypes []string // accepted contract types (internship, apprenticeship, ...)
	Locations     Locations
	SeniorOK      bool // accept senior-level postings
}

// Locations splits location preferences by strength.
type Locations struct {
	Preferred  []string
	Acceptable []string
	RemoteOK   bool
}
