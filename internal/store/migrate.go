package store

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS postings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  platform TEXT NOT NULL,
  external_id TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  requirements TEXT NOT NULL DEFAULT '',
  salary_range TEXT NOT NULL DEFAULT '',
  contract_type TEXT NOT NULL DEFAULT '',
  experience_level TEXT NOT NULL DEFAULT '',
  posted_at TEXT,
  apply_url TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'scraped',
  score REAL NOT NULL DEFAULT 0,
  breakdown TEXT NOT NULL DEFAULT '',
  applied_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE(platform, external_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_status ON postings(status);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_applied_at ON postings(applied_at);`,
		`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  posting_id INTEGER NOT NULL REFERENCES postings(id),
  status TEXT NOT NULL DEFAULT 'pending',
  method TEXT NOT NULL DEFAULT '',
  cover_letter_ref TEXT NOT NULL DEFAULT '',
  resume_ref TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  submitted_at TEXT NOT NULL,
  follow_up_due TEXT,
  follow_up_sent INTEGER NOT NULL DEFAULT 0,
  response_at TEXT,
  response_type TEXT NOT NULL DEFAULT ''
);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_posting ON applications(posting_id);`,
		`
CREATE TABLE IF NOT EXISTS cover_letters (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  posting_id INTEGER NOT NULL REFERENCES postings(id),
  file_path TEXT NOT NULL,
  language TEXT NOT NULL DEFAULT 'en',
  content TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '[]',
  generated_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_cover_letters_posting ON cover_letters(posting_id);`,
		`
CREATE TABLE IF NOT EXISTS activity_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  component TEXT NOT NULL,
  action TEXT NOT NULL,
  outcome TEXT NOT NULL DEFAULT 'success',
  detail TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS platform_stats (
  date TEXT NOT NULL,
  platform TEXT NOT NULL,
  postings_scraped INTEGER NOT NULL DEFAULT 0,
  postings_analyzed INTEGER NOT NULL DEFAULT 0,
  letters_generated INTEGER NOT NULL DEFAULT 0,
  applications_sent INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (date, platform)
);`,
		`
CREATE TABLE IF NOT EXISTS companies (
  name TEXT PRIMARY KEY,
  website TEXT NOT NULL DEFAULT '',
  industry TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS user_profile (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  linkedin_url TEXT NOT NULL DEFAULT '',
  portfolio_url TEXT NOT NULL DEFAULT '',
  github_url TEXT NOT NULL DEFAULT '',
  current_study TEXT NOT NULL DEFAULT '',
  skills TEXT NOT NULL DEFAULT '[]',
  education TEXT NOT NULL DEFAULT '[]',
  languages TEXT NOT NULL DEFAULT '[]',
  updated_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS settings (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  daily_application_limit INTEGER NOT NULL DEFAULT 30,
  min_relevance_score REAL NOT NULL DEFAULT 6.0,
  auto_apply_enabled INTEGER NOT NULL DEFAULT 0,
  follow_up_days INTEGER NOT NULL DEFAULT 7,
  enabled_platforms TEXT NOT NULL DEFAULT '[]',
  delay_min_seconds REAL NOT NULL DEFAULT 2,
  delay_max_seconds REAL NOT NULL DEFAULT 5,
  max_requests_per_session INTEGER NOT NULL DEFAULT 30,
  session_break_duration INTEGER NOT NULL DEFAULT 300,
  updated_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS scraping_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  platform TEXT NOT NULL,
  fingerprint TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL,
  ended_at TEXT,
  request_count INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active'
);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_platform_status ON scraping_sessions(platform, status);`,
	}

	for _, q := range stmts {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
