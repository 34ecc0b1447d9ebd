package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mentorinc/rolecoach/internal/judge"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/quota"
	"github.com/mentorinc/rolecoach/internal/scoring"
	"github.com/mentorinc/rolecoach/internal/session"
)

func (o *rootOptions) newScorer() (*scoring.Scorer, error) {
	j, err := judge.New(judge.Config{
		Engine:  judge.Engine(o.cfg.Judge.Engine),
		Model:   o.cfg.Judge.Model,
		APIKey:  o.cfg.Judge.APIKey,
		BaseURL: o.cfg.Judge.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating judge: %w", err)
	}
	return scoring.NewScorer(j, scoring.WithTemperature(o.cfg.JudgeTemperature())), nil
}

func (o *rootOptions) defaultScenario() (models.Scenario, error) {
	s, err := models.ParseScenario(o.cfg.Scoring.DefaultScenario)
	if err != nil {
		return "", fmt.Errorf("scoring.default_scenario: %w", err)
	}
	return s, nil
}

// scenarioOr parses flag, falling back to fallback and then the configured
// default when flag is empty.
func (o *rootOptions) scenarioOr(flag string, fallback models.Scenario) (models.Scenario, error) {
	if flag != "" {
		return models.ParseScenario(flag)
	}
	if fallback != "" {
		return fallback, nil
	}
	return o.defaultScenario()
}

func (o *rootOptions) sessionStore() *session.Store {
	return session.NewStore(o.cfg.SessionsDir())
}

// openQuota opens the quota database. Initializing a new access code clears
// the local sessions, the way a fresh invitation starts from a clean slate.
// The caller must call the returned close function.
func (o *rootOptions) openQuota(sessions *session.Store) (*quota.Manager, func() error, error) {
	store, err := quota.OpenSQLite(o.cfg.QuotaDBPath())
	if err != nil {
		return nil, nil, err
	}

	mgr := quota.NewManager(store,
		quota.WithAllotment(o.cfg.Quota.Allotment),
		quota.WithInitializeHook(func(ctx context.Context, accessCode string) error {
			slog.DebugContext(ctx, "Clearing local sessions for new access code", "dir", sessions.Dir())
			return sessions.Clear()
		}),
	)
	return mgr, store.Close, nil
}

// readQuota reads the tracker's state. A first read of a new access code
// initializes it and reports PhaseUninitialized, so it is read once more.
func readQuota(ctx context.Context, tracker *quota.Tracker) (quota.State, error) {
	state, err := tracker.Read(ctx)
	if err != nil {
		return state, err
	}
	if state.Phase() == quota.PhaseUninitialized {
		return tracker.Read(ctx)
	}
	return state, nil
}

// formatRemaining renders the quota line shown to operators. It is empty when
// there is nothing meaningful to show.
func formatRemaining(state quota.State, allotment int) string {
	if state.Phase() != quota.PhaseActive {
		return ""
	}
	return fmt.Sprintf("%d / %d Simulations Remaining", state.Remaining, allotment)
}
