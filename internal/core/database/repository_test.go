package db

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
)

func sampleHistory() []*models.AnalysisResult {
	return []*models.AnalysisResult{
		{
			ID: "r2", UserID: "u1", UserName: "Ada", Timestamp: 1700000001000,
			ProductName: "Sleep Mask", SelectedMode: models.ModeManual, DataConfidence: "Medium",
			Normalization: models.Normalization{
				CoreProblem: "Light", BuyerPersona: "Nurses", ValueProp: "Dark",
				PricePositioning: "Mid $29", InitialRiskFlags: []string{"commodity"},
			},
			FailureRiskScore: 62,
			TopMistakes:      []models.Mistake{{Rank: 1, Title: "Vague", WhyItMatters: "x", ConversionImpact: "-5%", Severity: "High"}},
			OptimizationStrategies: []models.Strategy{
				{Category: "Pricing", WhatToChange: "Bundle", WhyItWorks: "AOV", Impact: "High"},
			},
			SalesStrategy: []models.SalesChannel{{Rank: 1, Platform: "TikTok Shop", ContentFormat: "UGC", CreatorType: "Nurses", ConversionLogic: "Demo"}},
			GTMPlan: models.GTMPlan{
				LaunchAngle: "Sleep", Timeline: models.Timeline{Days1to7: "a", Days8to21: "b", Days22to30: "c"},
				AdHooks: []string{"hook"}, OutreachAngle: "Hospitals",
				FunnelStages: []models.FunnelStage{{Stage: "TOFU", Action: "UGC"}},
			},
			CompetitiveAnalysis: []models.Competitor{{Name: "Manta", Pricing: "$35", Strengths: []string{"brand"}, Weaknesses: []string{"price"}, Positioning: "Premium"}},
			Summary:             "Crowded.",
			IsPublic:            true,
			Ratings:             []models.Rating{{UserID: "u2", Score: 8}},
			Suggestions:         []models.Suggestion{{UserID: "u2", UserName: "Bo", Text: "Add proof", Timestamp: 1700000002000}},
		},
		{ID: "r1", UserID: "u1", ProductName: "Lamp", Ratings: []models.Rating{}, Suggestions: []models.Suggestion{}},
	}
}

func TestRepositoryHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]func(t *testing.T) *Repository{
		"memory": func(t *testing.T) *Repository { return NewRepository(NewMemoryStore(), nil) },
		"sqlite": func(t *testing.T) *Repository { return NewRepository(newSQLiteMemory(t), nil) },
	} {
		t.Run(name, func(t *testing.T) {
			repo := store(t)
			want := sampleHistory()
			require.NoError(t, repo.SaveHistory(ctx, want))

			got, err := repo.LoadHistory(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRepositoryMissingKeysLoadEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), nil)

	h, err := repo.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)

	p, err := repo.LoadSavedProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, p)

	u, err := repo.LoadUser(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRepositoryUserSlotPerSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, nil)

	u := &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: 1}
	require.NoError(t, repo.SaveUser(ctx, "s1", u))

	_, found, err := store.Get(ctx, "insightcart_user:s1")
	require.NoError(t, err)
	assert.True(t, found)

	other, err := repo.LoadUser(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, other)

	got, err := repo.LoadUser(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, repo.ClearUser(ctx, "s1"))
	got, err = repo.LoadUser(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositorySavedProductsPersistedLayout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, nil)

	products := []*models.SavedProduct{{ID: "p1", UserID: "u1", Name: "Mask", Description: "Silk", Category: "Wellness", Timestamp: 5}}
	require.NoError(t, repo.SaveSavedProducts(ctx, products))

	raw, _, err := store.Get(ctx, KeySavedProducts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","userId":"u1","name":"Mask","description":"Silk","category":"Wellness","timestamp":5}]`, string(raw))

	got, err := repo.LoadSavedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)
}

func TestRepositoryHistoryKeepsEmptyCommunityLists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, nil)

	fresh := &models.AnalysisResult{ID: "r1", UserID: "u1", IsPublic: true, Ratings: []models.Rating{}, Suggestions: []models.Suggestion{}}
	require.NoError(t, repo.SaveHistory(ctx, []*models.AnalysisResult{fresh.Clone()}))

	raw, ok, err := store.Get(ctx, KeyHistory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"ratings":[]`)
	assert.Contains(t, string(raw), `"suggestions":[]`)
}

type failingStore struct{ *MemoryStore }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestRepositoryPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewRecorder()

	bad := NewMemoryStore()
	require.NoError(t, bad.Set(ctx, KeyHistory, []byte("{not json")))
	_, err := NewRepository(bad, m).LoadHistory(ctx)
	assert.ErrorContains(t, err, "decode insightcart_history_global")

	err = NewRepository(failingStore{NewMemoryStore()}, m).SaveHistory(ctx, nil)
	assert.ErrorContains(t, err, "quota exceeded")

	n, err := testutil.GatherAndCount(m.Registry(), "insightcart_store_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
