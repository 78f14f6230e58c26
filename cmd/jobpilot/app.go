package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/fetch"
	"jobpilot-engine/internal/fetch/board"
	"jobpilot-engine/internal/fetch/emailalert"
	"jobpilot-engine/internal/govern"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/pipeline"
	"jobpilot-engine/internal/runlock"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/submit"
)

// defaultConfigPath is the in-repo seed copied to the data dir on first run.
const defaultConfigPath = "config/config.yml"

type app struct {
	cfg   config.Config
	store *store.Store
	gov   *govern.Governor
	pipe  *pipeline.Pipeline
	lock  *runlock.Lock
}

func dataDir() string {
	if d := os.Getenv("JOBPILOT_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

// openApp does the shared setup every stage command needs: config, run lock,
// store, governor, fetchers, pipeline. Any failure here is an unrecoverable
// setup failure and exits non-zero; stage-local errors later never do.
func openApp(ctx context.Context) (*app, error) {
	dir := dataDir()

	cfgPath, err := config.EnsureUserConfig(dir, defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		return nil, fmt.Errorf("config %s has %d error(s)", cfgPath, len(v.Errors))
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dir
	}
	if cfg.App.DocumentsDir == "" {
		cfg.App.DocumentsDir = filepath.Join(dir, "documents")
	}

	lock, err := runlock.Acquire(dir)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, "jobpilot.db"))
	if err != nil {
		lock.Release()
		return nil, fmt.Errorf("open store: %w", err)
	}

	// sessions left active by a crashed run would block every new session
	if n, err := st.CloseStaleSessions(ctx); err != nil {
		log.Printf("[setup] close stale sessions: %v", err)
	} else if n > 0 {
		log.Printf("[setup] closed %d stale session(s)", n)
	}

	if err := st.SyncSettings(ctx, settingsFrom(cfg)); err != nil {
		log.Printf("[setup] sync settings: %v", err)
	}
	if err := st.SyncProfile(ctx, cfg.Profile()); err != nil {
		log.Printf("[setup] sync profile: %v", err)
	}

	gov := govern.New(pacingFrom(cfg), cfg.Application.DailyLimit, st, st)

	renderer, err := letter.NewTemplateRenderer(cfg.Application.TemplateDir, cfg.Application.Language)
	if err != nil {
		st.Close()
		lock.Release()
		return nil, fmt.Errorf("letter templates: %w", err)
	}

	registry := fetch.Registry{
		"board":        board.New(gov),
		"email_alerts": emailalert.New(mailboxesFrom(cfg)),
	}

	pipe := pipeline.New(st, gov, registry, renderer, submit.ForMethod(cfg.Application.Method), cfg)

	return &app{cfg: cfg, store: st, gov: gov, pipe: pipe, lock: lock}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		log.Printf("[setup] close store: %v", err)
	}
	if err := a.lock.Release(); err != nil {
		log.Printf("[setup] release run lock: %v", err)
	}
}

func pacingFrom(cfg config.Config) govern.Pacing {
	p := cfg.Pacing
	return govern.Pacing{
		DelayMin:              time.Duration(p.DelayMinSeconds * float64(time.Second)),
		DelayMax:              time.Duration(p.DelayMaxSeconds * float64(time.Second)),
		MaxRequestsPerSession: p.MaxRequestsPerSession,
		SessionBreak:          time.Duration(p.SessionBreakSeconds) * time.Second,
	}
}

func settingsFrom(cfg config.Config) store.Settings {
	return store.Settings{
		DailyApplicationLimit: cfg.Application.DailyLimit,
		MinRelevanceScore:     cfg.Search.MinRelevanceScore,
		AutoApplyEnabled:      cfg.Application.AutoApply,
		FollowUpDays:          cfg.Application.FollowUpDays,
		EnabledPlatforms:      cfg.EnabledPlatforms(),
		DelayMinSeconds:       cfg.Pacing.DelayMinSeconds,
		DelayMaxSeconds:       cfg.Pacing.DelayMaxSeconds,
		MaxRequestsPerSession: cfg.Pacing.MaxRequestsPerSession,
		SessionBreakSeconds:   cfg.Pacing.SessionBreakSeconds,
	}
}

func mailboxesFrom(cfg config.Config) map[string]emailalert.Account {
	accounts := make(map[string]emailalert.Account)
	for name, p := range cfg.Platforms {
		if !p.Enabled || p.Kind != "email_alerts" {
			continue
		}
		accounts[name] = emailalert.Account{
			Host:       p.IMAPHost,
			Port:       p.IMAPPort,
			Username:   p.Username,
			Mailbox:    p.Mailbox,
			SubjectAny: p.SearchSubjectAny,
		}
	}
	return accounts
}
