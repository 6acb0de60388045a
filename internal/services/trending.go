package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/markdave123-py/insightcart/internal/models"
)

const trendingTop = 3

// StaticTrending is the illustrative aggregate shown before any report is public.
func StaticTrending() models.TrendingAggregate {
	return models.TrendingAggregate{
		TopCategories: []models.CategoryTrend{
			{Name: "Eco-Wellness", Growth: "+42%"},
			{Name: "Niche SaaS", Growth: "+28%"},
			{Name: "Pet Technology", Growth: "+15%"},
		},
		WinningPriceBands: []models.PriceBand{
			{Band: "$49 - $99", SuccessRate: "78%"},
			{Band: "$199 - $499", SuccessRate: "64%"},
			{Band: "$0 - $25", SuccessRate: "41%"},
		},
		PlatformPerformance: []models.PlatformScore{
			{Name: "TikTok Shop", Score: "9.2"},
			{Name: "Meta Advantage+", Score: "8.5"},
			{Name: "Pinterest Ads", Score: "7.1"},
		},
		CommonWinningPatterns: []string{
			"Bundled trial periods for subscription products.",
			"Explicit supply-chain transparency in value props.",
			"Comparison-focused landing pages vs major incumbents.",
		},
		CommonFailurePatterns: []string{
			`Vague target personas (e.g., "everyone").`,
			"Pricing too low for sustainable ad-spend margins.",
			"Lack of recognizable trust badges on checkout.",
		},
	}
}

type TrendingView struct {
	Aggregate      models.TrendingAggregate `json:"aggregate"`
	Computed       bool                     `json:"computed"`
	SampleSize     int                      `json:"sampleSize"`
	PublicListings []FeedCard               `json:"publicListings"`
}

// BuildTrending overlays the static aggregate with figures computed from the
// public reports. Sections with nothing to compute keep the static values.
func BuildTrending(reports []*models.AnalysisResult, viewer *models.User) TrendingView {
	var public []*models.AnalysisResult
	for _, r := range reports {
		if r.IsPublic {
			public = append(public, r)
		}
	}

	agg := StaticTrending()
	computed := ComputeTrending(public)
	if len(computed.TopCategories) > 0 {
		agg.TopCategories = computed.TopCategories
	}
	if len(computed.WinningPriceBands) > 0 {
		agg.WinningPriceBands = computed.WinningPriceBands
	}
	if len(computed.PlatformPerformance) > 0 {
		agg.PlatformPerformance = computed.PlatformPerformance
	}
	if len(computed.CommonWinningPatterns) > 0 {
		agg.CommonWinningPatterns = computed.CommonWinningPatterns
	}
	if len(computed.CommonFailurePatterns) > 0 {
		agg.CommonFailurePatterns = computed.CommonFailurePatterns
	}

	cards := make([]FeedCard, 0, len(public))
	for _, r := range public {
		cards = append(cards, newFeedCard(r, viewer))
	}
	return TrendingView{Aggregate: agg, Computed: len(public) > 0, SampleSize: len(public), PublicListings: cards}
}

// ComputeTrending aggregates the given reports. Only anonymous patterns are
// produced; no report id or owner appears in the result.
func ComputeTrending(reports []*models.AnalysisResult) models.TrendingAggregate {
	var agg models.TrendingAggregate
	if len(reports) == 0 {
		return agg
	}

	total := float64(len(reports))
	cats := newTally()
	bands := newTally()
	platforms := newTally()
	flags := newTally()
	wins := newTally()

	for _, r := range reports {
		viability := float64(r.ViabilityScore())
		if w := firstWord(r.Normalization.PricePositioning); w != "" {
			cats.add(w, 1)
		}
		if band, ok := priceBand(r.Normalization.PricePositioning); ok {
			bands.add(band, viability)
		}
		seen := map[string]bool{}
		for _, ch := range r.SalesStrategy {
			name := strings.TrimSpace(ch.Platform)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			platforms.add(name, viability/10)
		}
		for _, f := range r.Normalization.InitialRiskFlags {
			if f = strings.TrimSpace(f); f != "" {
				flags.add(f, 1)
			}
		}
		for _, s := range r.OptimizationStrategies {
			if s.Impact == "High" && strings.TrimSpace(s.WhatToChange) != "" {
				wins.add(strings.TrimSpace(s.WhatToChange), viability)
			}
		}
	}

	for _, k := range cats.top(trendingTop, cats.sum) {
		agg.TopCategories = append(agg.TopCategories, models.CategoryTrend{
			Name:   k,
			Growth: fmt.Sprintf("+%d%%", int(math.Round(cats.sum[k]/total*100))),
		})
	}
	for _, k := range bands.top(trendingTop, bands.mean()) {
		agg.WinningPriceBands = append(agg.WinningPriceBands, models.PriceBand{
			Band:        k,
			SuccessRate: fmt.Sprintf("%d%%", int(math.Round(bands.mean()[k]))),
		})
	}
	platformMeans := platforms.mean()
	for _, k := range platforms.top(trendingTop, platformMeans) {
		agg.PlatformPerformance = append(agg.PlatformPerformance, models.PlatformScore{
			Name:  k,
			Score: strconv.FormatFloat(platformMeans[k], 'f', 1, 64),
		})
	}
	agg.CommonWinningPatterns = wins.top(trendingTop, wins.sum)
	agg.CommonFailurePatterns = flags.top(trendingTop, flags.sum)
	return agg
}

// tally accumulates a weight per key and remembers how many samples it saw.
type tally struct {
	sum   map[string]float64
	count map[string]int
}

func newTally() *tally {
	return &tally{sum: map[string]float64{}, count: map[string]int{}}
}

func (t *tally) add(key string, weight float64) {
	t.sum[key] += weight
	t.count[key]++
}

func (t *tally) mean() map[string]float64 {
	out := make(map[string]float64, len(t.sum))
	for k, v := range t.sum {
		out[k] = v / float64(t.count[k])
	}
	return out
}

// top returns up to n keys ordered by score desc, then key asc.
func (t *tally) top(n int, score map[string]float64) []string {
	keys := make([]string, 0, len(score))
	for k := range score {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if score[keys[i]] != score[keys[j]] {
			return score[keys[i]] > score[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

var priceRe = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?)`)

var priceBands = []struct {
	max  float64
	name string
}{
	{25, "$0 - $25"},
	{49, "$25 - $49"},
	{99, "$49 - $99"},
	{199, "$99 - $199"},
	{499, "$199 - $499"},
	{math.Inf(1), "$499+"},
}

// priceBand buckets the first dollar amount found in a price positioning.
func priceBand(positioning string) (string, bool) {
	m := priceRe.FindStringSubmatch(positioning)
	if m == nil {
		return "", false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return "", false
	}
	for _, b := range priceBands {
		if v <= b.max {
			return b.name, true
		}
	}
	return "", false
}
