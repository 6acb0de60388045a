package services

import (
	"sort"
	"strings"

	"github.com/markdave123-py/insightcart/internal/models"
)

type FeedSort string

const (
	SortTrending FeedSort = "trending"
	SortRated    FeedSort = "rated"
	SortNew      FeedSort = "new"
	SortScore    FeedSort = "score"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// ParseFeedSort maps a query value to a sort; empty means trending.
func ParseFeedSort(s string) (FeedSort, error) {
	switch FeedSort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortTrending:
		return SortTrending, nil
	case SortRated:
		return SortRated, nil
	case SortNew:
		return SortNew, nil
	case SortScore:
		return SortScore, nil
	}
	return "", ErrInvalidSort
}

// FeedCard is the public subset of a listed report.
type FeedCard struct {
	ID               string  `json:"id"`
	ProductName      string  `json:"productName"`
	UserName         string  `json:"userName,omitempty"`
	Summary          string  `json:"summary"`
	PricePositioning string  `json:"pricePositioning"`
	Timestamp        int64   `json:"timestamp"`
	FailureRiskScore int     `json:"failureRiskScore"`
	ViabilityScore   int     `json:"viabilityScore"`
	AverageRating    float64 `json:"averageRating"`
	RatingCount      int     `json:"ratingCount"`
	SuggestionCount  int     `json:"suggestionCount"`
	MyRating         int     `json:"myRating,omitempty"`
}

type Feed struct {
	Sort       FeedSort   `json:"sort"`
	Category   string     `json:"category"`
	Categories []string   `json:"categories"`
	Cards      []FeedCard `json:"cards"`
}

func newFeedCard(r *models.AnalysisResult, viewer *models.User) FeedCard {
	c := FeedCard{
		ID:               r.ID,
		ProductName:      r.ProductName,
		UserName:         r.UserName,
		Summary:          r.Summary,
		PricePositioning: r.Normalization.PricePositioning,
		Timestamp:        r.Timestamp,
		FailureRiskScore: r.FailureRiskScore,
		ViabilityScore:   r.ViabilityScore(),
		AverageRating:    r.AverageRating(),
		RatingCount:      len(r.Ratings),
		SuggestionCount:  len(r.Suggestions),
	}
	if viewer != nil {
		c.MyRating = r.RatingBy(viewer.ID)
	}
	return c
}

// BuildFeed filters and sorts the public reports. Non-public reports in the
// input are skipped.
func BuildFeed(reports []*models.AnalysisResult, viewer *models.User, sortBy FeedSort, category string) Feed {
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategories
	}

	var public []*models.AnalysisResult
	for _, r := range reports {
		if r.IsPublic {
			public = append(public, r)
		}
	}

	var listed []*models.AnalysisResult
	for _, r := range public {
		if category == AllCategories || strings.Contains(r.Normalization.PricePositioning, category) {
			listed = append(listed, r)
		}
	}

	sort.SliceStable(listed, func(i, j int) bool {
		a, b := listed[i], listed[j]
		switch sortBy {
		case SortScore:
			return a.FailureRiskScore < b.FailureRiskScore
		case SortRated:
			return a.AverageRating() > b.AverageRating()
		default:
			return a.Timestamp > b.Timestamp
		}
	})

	cards := make([]FeedCard, 0, len(listed))
	for _, r := range listed {
		cards = append(cards, newFeedCard(r, viewer))
	}
	return Feed{Sort: sortBy, Category: category, Categories: Categories(public), Cards: cards}
}

// Categories is "All" followed by the distinct first words of each report's
// price positioning, in first-seen order.
func Categories(reports []*models.AnalysisResult) []string {
	out := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, r := range reports {
		word := firstWord(r.Normalization.PricePositioning)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}

func firstWord(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
