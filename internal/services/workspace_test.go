package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/markdave123-py/insightcart/internal/core/database"
	"github.com/markdave123-py/insightcart/internal/models"
)

func TestSubmitAttachesOwnershipAndDefaults(t *testing.T) {
	f := newFixture(t)
	user := &models.User{ID: "a", Name: "Ada"}

	res, err := f.ws.Submit(context.Background(), user, manualSleepMask())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "a", res.UserID)
	assert.Equal(t, "Ada", res.UserName)
	assert.Equal(t, models.ModeManual, res.SelectedMode)
	assert.False(t, res.IsPublic)
	assert.NotNil(t, res.Ratings)
	assert.Empty(t, res.Ratings)
	assert.NotNil(t, res.Suggestions)
	assert.Positive(t, res.Timestamp)

	stored, err := f.repo.LoadHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res, stored[0])
}

func TestSubmitPrependsNewest(t *testing.T) {
	f := newFixture(t)
	user := &models.User{ID: "a"}
	ctx := context.Background()

	first, err := f.ws.Submit(ctx, user, models.ProductInput{Name: "One"})
	require.NoError(t, err)
	second, err := f.ws.Submit(ctx, user, models.ProductInput{Name: "Two"})
	require.NoError(t, err)

	h := f.ws.UserHistory("a")
	require.Len(t, h, 2)
	assert.Equal(t, second.ID, h[0].ID)
	assert.Equal(t, first.ID, h[1].ID)
}

func TestReportsListsEveryOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ws.Submit(ctx, &models.User{ID: "a"}, models.ProductInput{Name: "One"})
	require.NoError(t, err)
	_, err = f.ws.Submit(ctx, &models.User{ID: "b"}, models.ProductInput{Name: "Two"})
	require.NoError(t, err)

	all := f.ws.Reports()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].UserID)
	assert.Equal(t, "a", all[1].UserID)
	assert.Empty(t, f.ws.PublicListings())
}

func TestConcurrentSubmitsLandInCompletionOrder(t *testing.T) {
	f := newFixture(t)
	gate := make(chan struct{})
	analyzer := &gatedAnalyzer{gates: map[string]chan struct{}{"Slow": gate}, entered: make(chan string, 2)}
	ws := NewWorkspace(f.repo, analyzer, WithClock(f.clock.Now))
	ctx := context.Background()
	user := &models.User{ID: "a"}

	slowDone := make(chan *models.AnalysisResult, 1)
	go func() {
		res, err := ws.Submit(ctx, user, models.ProductInput{Name: "Slow"})
		assert.NoError(t, err)
		slowDone <- res
	}()
	require.Equal(t, "Slow", <-analyzer.entered)

	fast, err := ws.Submit(ctx, user, models.ProductInput{Name: "Fast"})
	require.NoError(t, err)
	require.Equal(t, "Fast", <-analyzer.entered)

	close(gate)
	var slow *models.AnalysisResult
	select {
	case slow = <-slowDone:
	case <-time.After(5 * time.Second):
		t.Fatal("slow submission never finished")
	}
	require.NotNil(t, slow)

	all := ws.Reports()
	require.Len(t, all, 2)
	assert.Equal(t, slow.ID, all[0].ID)
	assert.Equal(t, fast.ID, all[1].ID)

	persisted, err := f.repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.Equal(t, slow.ID, persisted[0].ID)
}

func TestListingKeepsEmptyCommunityLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := &models.User{ID: "a"}

	res, err := f.ws.Submit(ctx, user, manualSleepMask())
	require.NoError(t, err)
	_, err = f.ws.SetListing(ctx, user, res.ID, true)
	require.NoError(t, err)

	raw, ok, err := f.store.Get(ctx, db.KeyHistory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"ratings":[]`)
	assert.Contains(t, string(raw), `"suggestions":[]`)
	assert.NotContains(t, string(raw), `"ratings":null`)
}

func TestSubmitRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ws.Submit(ctx, nil, manualSleepMask())
	assert.ErrorIs(t, err, ErrNoActiveUser)

	_, err = f.ws.Submit(ctx, &models.User{ID: "a"}, models.ProductInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.analyzer.calls)

	f.analyzer.err = errors.New("boom")
	_, err = f.ws.Submit(ctx, &models.User{ID: "a"}, manualSleepMask())
	assert.Error(t, err)
	assert.Empty(t, f.ws.UserHistory("a"))
}

func TestRateUpsertsPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a"}
	rater := &models.User{ID: "b"}

	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)
	_, err = f.ws.SetListing(ctx, owner, res.ID, true)
	require.NoError(t, err)

	_, err = f.ws.Rate(ctx, rater, res.ID, 8)
	require.NoError(t, err)
	got, err := f.ws.Rate(ctx, rater, res.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, []models.Rating{{UserID: "b", Score: 5}}, got.Ratings)
}

func TestRateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a"}
	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)

	for _, score := range []int{0, 11, -3} {
		_, err := f.ws.Rate(ctx, owner, res.ID, score)
		assert.ErrorIs(t, err, ErrInvalidRating)
		assert.ErrorIs(t, err, ErrValidation)
	}
	for _, score := range []int{1, 10} {
		_, err := f.ws.Rate(ctx, owner, res.ID, score)
		assert.NoError(t, err)
	}
}

func TestRatePrivateReportOfOtherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.ws.Submit(ctx, &models.User{ID: "a"}, manualSleepMask())
	require.NoError(t, err)

	_, err = f.ws.Rate(ctx, &models.User{ID: "b"}, res.ID, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.ws.Rate(ctx, &models.User{ID: "b"}, "missing", 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuggestAppendsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a", Name: "Ada"}
	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)

	_, err = f.ws.Suggest(ctx, owner, res.ID, "  Add reviews  ")
	require.NoError(t, err)
	got, err := f.ws.Suggest(ctx, owner, res.ID, "Add reviews")
	require.NoError(t, err)

	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "Add reviews", got.Suggestions[0].Text)
	assert.Equal(t, "Ada", got.Suggestions[0].UserName)
	assert.Less(t, got.Suggestions[0].Timestamp, got.Suggestions[1].Timestamp)
}

func TestSuggestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a"}
	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)

	_, err = f.ws.Suggest(ctx, owner, res.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidSuggestion)

	_, err = f.ws.Suggest(ctx, owner, res.ID, strings.Repeat("é", MaxSuggestionLen+1))
	assert.ErrorIs(t, err, ErrInvalidSuggestion)

	_, err = f.ws.Suggest(ctx, owner, res.ID, strings.Repeat("é", MaxSuggestionLen))
	assert.NoError(t, err)
}

func TestSetListingOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a"}
	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)

	_, err = f.ws.SetListing(ctx, &models.User{ID: "b"}, res.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.ws.PublicListings())

	_, err = f.ws.SetListing(ctx, owner, res.ID, true)
	require.NoError(t, err)
	require.Len(t, f.ws.PublicListings(), 1)

	_, err = f.ws.SetListing(ctx, owner, res.ID, false)
	require.NoError(t, err)
	assert.Empty(t, f.ws.PublicListings())
}

func TestStorageFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := &models.User{ID: "a"}
	res, err := f.ws.Submit(ctx, owner, manualSleepMask())
	require.NoError(t, err)

	f.store.setFailing(true)

	_, err = f.ws.SetListing(ctx, owner, res.ID, true)
	assert.ErrorContains(t, err, "quota exceeded")
	_, err = f.ws.Rate(ctx, owner, res.ID, 9)
	assert.Error(t, err)
	_, err = f.ws.Submit(ctx, owner, models.ProductInput{Name: "Lamp"})
	assert.Error(t, err)
	_, err = f.ws.AddSavedProduct(ctx, owner, SavedProductDraft{Name: "Lamp", Description: "Desk"})
	assert.Error(t, err)

	got, err := f.ws.Report(res.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
	assert.Empty(t, got.Ratings)
	assert.Len(t, f.ws.UserHistory("a"), 1)
	assert.Empty(t, f.ws.UserProducts("a"))
}

func TestReportReturnsCopies(t *testing.T) {
	f := newFixture(t)
	res, err := f.ws.Submit(context.Background(), &models.User{ID: "a"}, manualSleepMask())
	require.NoError(t, err)

	got, err := f.ws.Report(res.ID)
	require.NoError(t, err)
	got.IsPublic = true
	got.Ratings = append(got.Ratings, models.Rating{UserID: "x", Score: 1})

	again, err := f.ws.Report(res.ID)
	require.NoError(t, err)
	assert.False(t, again.IsPublic)
	assert.Empty(t, again.Ratings)
}

func TestSavedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &models.User{ID: "a"}
	b := &models.User{ID: "b"}

	_, err := f.ws.AddSavedProduct(ctx, a, SavedProductDraft{Name: "Lamp"})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	p1, err := f.ws.AddSavedProduct(ctx, a, SavedProductDraft{Name: "Lamp", Description: "Desk lamp", Link: " https://x.example "})
	require.NoError(t, err)
	assert.Equal(t, "https://x.example", p1.Link)
	p2, err := f.ws.AddSavedProduct(ctx, a, SavedProductDraft{Name: "Mask", Description: "Silk"})
	require.NoError(t, err)
	_, err = f.ws.AddSavedProduct(ctx, b, SavedProductDraft{Name: "Mug", Description: "Ceramic"})
	require.NoError(t, err)

	mine := f.ws.UserProducts("a")
	require.Len(t, mine, 2)
	assert.Equal(t, p2.ID, mine[0].ID)

	assert.ErrorIs(t, f.ws.DeleteSavedProduct(ctx, b, p1.ID), ErrForbidden)
	assert.ErrorIs(t, f.ws.DeleteSavedProduct(ctx, a, "missing"), ErrNotFound)
	require.NoError(t, f.ws.DeleteSavedProduct(ctx, a, p1.ID))
	assert.Len(t, f.ws.UserProducts("a"), 1)
	assert.Len(t, f.ws.UserProducts("b"), 1)

	stored, err := f.repo.LoadSavedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestLoadRestoresPersistedLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.ws.Submit(ctx, &models.User{ID: "a"}, manualSleepMask())
	require.NoError(t, err)

	fresh := NewWorkspace(f.repo, f.analyzer)
	require.NoError(t, fresh.Load(ctx))
	got, err := fresh.Report(res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, got)
}
