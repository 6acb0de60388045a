package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/insightcart/internal/core/analysis"
	db "github.com/markdave123-py/insightcart/internal/core/database"
	"github.com/markdave123-py/insightcart/internal/models"
)

// stubAnalyzer echoes the input back as a report with a fixed risk score.
type stubAnalyzer struct {
	mu    sync.Mutex
	risk  int
	err   error
	calls []models.ProductInput
}

func (a *stubAnalyzer) Analyze(_ context.Context, in models.ProductInput) (*models.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, in)
	if a.err != nil {
		return nil, a.err
	}
	return auditFor(in.Name, analysis.ModeFor(in), a.risk), nil
}

// gatedAnalyzer blocks inputs whose name has a gate until the gate closes.
type gatedAnalyzer struct {
	gates   map[string]chan struct{}
	entered chan string
}

func (a *gatedAnalyzer) Analyze(ctx context.Context, in models.ProductInput) (*models.AnalysisResult, error) {
	a.entered <- in.Name
	if gate, ok := a.gates[in.Name]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return auditFor(in.Name, analysis.ModeFor(in), 40), nil
}

func auditFor(name, mode string, risk int) *models.AnalysisResult {
	return &models.AnalysisResult{
		ProductName:    name,
		SelectedMode:   mode,
		DataConfidence: "Medium",
		Normalization: models.Normalization{
			CoreProblem: "Light disrupts sleep", BuyerPersona: "Shift workers",
			ValueProp: "Blackout", PricePositioning: "Mid-range $29", InitialRiskFlags: []string{"commodity"},
		},
		FailureRiskScore:       risk,
		TopMistakes:            []models.Mistake{{Rank: 1, Title: "Vague persona", Severity: "High"}},
		OptimizationStrategies: []models.Strategy{{Category: "Pricing", WhatToChange: "Bundle 2", Impact: "High"}},
		SalesStrategy:          []models.SalesChannel{{Rank: 1, Platform: "TikTok Shop"}},
		GTMPlan:                models.GTMPlan{LaunchAngle: "Sleep anywhere"},
		CompetitiveAnalysis:    []models.Competitor{{Name: "Manta", Pricing: "$35"}},
		Summary:                "Crowded category.",
	}
}

// flakyStore fails every Set while failing is true.
type flakyStore struct {
	*db.MemoryStore
	mu      sync.Mutex
	failing bool
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fixture struct {
	store    *flakyStore
	repo     *db.Repository
	analyzer *stubAnalyzer
	ws       *Workspace
	registry *Registry
	clock    *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &flakyStore{MemoryStore: db.NewMemoryStore()},
		analyzer: &stubAnalyzer{risk: 40},
		clock:    &fakeClock{t: time.UnixMilli(1_700_000_000_000)},
	}
	f.repo = db.NewRepository(f.store, nil)
	f.ws = NewWorkspace(f.repo, f.analyzer, WithClock(f.clock.Now))
	require.NoError(t, f.ws.Load(context.Background()))
	f.registry = NewRegistry(f.ws, f.repo, nil, nil)
	return f
}

func (f *fixture) login(t *testing.T, name string) *Session {
	t.Helper()
	s := f.registry.Create()
	_, err := s.Login(context.Background(), name, name+"@example.com")
	require.NoError(t, err)
	return s
}

func manualSleepMask() models.ProductInput {
	return models.ProductInput{Name: "Sleep Mask", Description: "Silk mask", Category: "Wellness", Price: "29.00"}
}
