package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/insightcart/internal/models"
)

func listed(id, positioning string, ts int64, risk int, scores ...int) *models.AnalysisResult {
	r := auditFor(id, models.ModeManual, risk)
	r.ID = id
	r.UserID = "owner"
	r.Timestamp = ts
	r.IsPublic = true
	r.Normalization.PricePositioning = positioning
	for i, s := range scores {
		r.Ratings = append(r.Ratings, models.Rating{UserID: string(rune('a' + i)), Score: s})
	}
	return r
}

func ids(cards []FeedCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildFeedSorts(t *testing.T) {
	reports := []*models.AnalysisResult{
		listed("old", "Premium $120", 1, 30, 9),
		listed("new", "Budget $9", 3, 70, 4, 6),
		listed("mid", "Premium $80", 2, 10),
	}
	private := listed("hidden", "Premium $1", 9, 1)
	private.IsPublic = false
	reports = append(reports, private)

	assert.Equal(t, []string{"new", "mid", "old"}, ids(BuildFeed(reports, nil, SortTrending, "").Cards))
	assert.Equal(t, []string{"new", "mid", "old"}, ids(BuildFeed(reports, nil, SortNew, "").Cards))
	assert.Equal(t, []string{"mid", "old", "new"}, ids(BuildFeed(reports, nil, SortScore, "").Cards))
	assert.Equal(t, []string{"old", "new", "mid"}, ids(BuildFeed(reports, nil, SortRated, "").Cards))
}

func TestBuildFeedCategories(t *testing.T) {
	reports := []*models.AnalysisResult{
		listed("a", "Premium $120", 1, 30),
		listed("b", "Budget $9", 2, 70),
		listed("c", "Premium $80", 3, 10),
	}
	feed := BuildFeed(reports, nil, SortTrending, "Premium")
	assert.Equal(t, []string{"All", "Premium", "Budget"}, feed.Categories)
	assert.Equal(t, []string{"c", "a"}, ids(feed.Cards))

	assert.Len(t, BuildFeed(reports, nil, SortTrending, "All").Cards, 3)
	assert.Empty(t, BuildFeed(reports, nil, SortTrending, "Luxury").Cards)
}

func TestFeedCardCarriesViewerRating(t *testing.T) {
	r := listed("a", "Mid $29", 1, 25, 8)
	feed := BuildFeed([]*models.AnalysisResult{r}, &models.User{ID: "a"}, SortTrending, "")
	require.Len(t, feed.Cards, 1)
	c := feed.Cards[0]
	assert.Equal(t, 75, c.ViabilityScore)
	assert.Equal(t, 8, c.MyRating)
	assert.Equal(t, 1, c.RatingCount)
	assert.InDelta(t, 8.0, c.AverageRating, 0.001)
}

func TestParseFeedSort(t *testing.T) {
	s, err := ParseFeedSort("")
	require.NoError(t, err)
	assert.Equal(t, SortTrending, s)

	s, err = ParseFeedSort("Rated")
	require.NoError(t, err)
	assert.Equal(t, SortRated, s)

	_, err = ParseFeedSort("random")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestBuildComparison(t *testing.T) {
	p1 := listed("p1", "Mid $29", 1, 20)
	p2 := listed("p2", "Mid $49", 2, 45)

	c := BuildComparison(p1, p2)
	assert.Equal(t, "p1", c.WinnerID)
	assert.Equal(t, 80, c.First.ViabilityScore)
	assert.Equal(t, 55, c.Second.ViabilityScore)
	assert.Equal(t, 1, c.First.MistakeCount)
	assert.Equal(t, `"p1" shows higher market potential.`, c.Headline)
	assert.Contains(t, c.Verdict, "80% viability index vs 55%")

	p2.FailureRiskScore = 20
	assert.Equal(t, "p2", BuildComparison(p1, p2).WinnerID)
}

func TestToggleSelection(t *testing.T) {
	sel := toggleSelection(nil, "a")
	sel = toggleSelection(sel, "b")
	assert.Equal(t, []string{"a", "b"}, toggleSelection(sel, "c"))
	assert.Equal(t, []string{"b"}, toggleSelection(sel, "a"))
}

func TestNewReportViewNonOwner(t *testing.T) {
	r := listed("r", "Mid $29", 1, 30, 7)
	v := NewReportView(r, &models.User{ID: "stranger"}, ReportViewOptions{ShareBaseURL: "https://x.example", ExportEnabled: true})

	assert.False(t, v.IsOwner)
	assert.True(t, v.Locked)
	assert.Equal(t, LockedMessage, v.LockedMessage)
	assert.Nil(t, v.GTMPlan)
	assert.Nil(t, v.CompetitiveAnalysis)
	assert.Nil(t, v.TopMistakes)
	assert.Nil(t, v.SalesStrategy)
	assert.Nil(t, v.OptimizationStrategies)
	assert.False(t, v.CanToggleListing)
	assert.False(t, v.CanExport)
	assert.Empty(t, v.ShareLink)
	assert.False(t, v.CanRate)
	assert.Equal(t, 70, v.ViabilityScore)
	assert.Equal(t, "Mid $29", v.Normalization.PricePositioning)

	anon := NewReportView(r, nil, ReportViewOptions{FromFeed: true})
	assert.True(t, anon.Locked)
	assert.False(t, anon.CanRate)
}

func TestNewReportViewOwner(t *testing.T) {
	r := listed("r", "Mid $29", 1, 30)
	owner := &models.User{ID: "owner"}
	v := NewReportView(r, owner, ReportViewOptions{ShareBaseURL: "https://x.example/app?ref=1", ExportEnabled: true})

	assert.True(t, v.IsOwner)
	assert.False(t, v.Locked)
	require.NotNil(t, v.GTMPlan)
	assert.Equal(t, "Sleep anywhere", v.GTMPlan.LaunchAngle)
	assert.Len(t, v.CompetitiveAnalysis, 1)
	assert.True(t, v.CanToggleListing)
	assert.True(t, v.CanExport)
	assert.Equal(t, "https://x.example/app?ref=1&reportId=r", v.ShareLink)
	assert.True(t, CanViewFull(r, owner))
	assert.False(t, CanMutate(r, nil))
}

func TestBuildTrendingStaticWhenNothingPublic(t *testing.T) {
	v := BuildTrending(nil, nil)
	assert.False(t, v.Computed)
	assert.Equal(t, StaticTrending(), v.Aggregate)
	assert.Empty(t, v.PublicListings)
}

func TestBuildTrendingOverlaysPublicReports(t *testing.T) {
	a := listed("a", "Premium $120", 1, 20)
	a.Normalization.InitialRiskFlags = []string{"thin margins", "commodity"}
	b := listed("b", "Premium $150", 2, 40)
	c := listed("c", "Budget $9", 3, 70)
	c.SalesStrategy = []models.SalesChannel{{Platform: "Amazon"}}
	private := listed("p", "Luxury $900", 4, 0)
	private.IsPublic = false

	v := BuildTrending([]*models.AnalysisResult{a, b, c, private}, nil)
	assert.True(t, v.Computed)
	assert.Equal(t, 3, v.SampleSize)
	assert.Len(t, v.PublicListings, 3)

	agg := v.Aggregate
	assert.Equal(t, []models.CategoryTrend{{Name: "Premium", Growth: "+67%"}, {Name: "Budget", Growth: "+33%"}}, agg.TopCategories)
	assert.Equal(t, []models.PriceBand{{Band: "$99 - $199", SuccessRate: "70%"}, {Band: "$0 - $25", SuccessRate: "30%"}}, agg.WinningPriceBands)
	assert.Equal(t, []models.PlatformScore{{Name: "TikTok Shop", Score: "7.0"}, {Name: "Amazon", Score: "3.0"}}, agg.PlatformPerformance)
	assert.Equal(t, []string{"commodity", "thin margins"}, agg.CommonFailurePatterns)
	assert.Equal(t, []string{"Bundle 2"}, agg.CommonWinningPatterns)
}

func TestPriceBand(t *testing.T) {
	for in, want := range map[string]string{
		"Mid-range $29":       "$25 - $49",
		"Budget $ 9.99":       "$0 - $25",
		"Luxury $1,299 tier":  "$499+",
		"Premium $199":        "$99 - $199",
		"Premium $250 bundle": "$199 - $499",
	} {
		got, ok := priceBand(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := priceBand("Premium tier")
	assert.False(t, ok)
}

func TestParseView(t *testing.T) {
	v, err := ParseView(" Compare-Two ")
	require.NoError(t, err)
	assert.Equal(t, ViewCompareTwo, v)
	_, err = ParseView("nope")
	assert.ErrorIs(t, err, ErrInvalidView)
}
