package services

import (
	"fmt"

	"github.com/markdave123-py/insightcart/internal/models"
)

type ComparisonSide struct {
	ID               string `json:"id"`
	ProductName      string `json:"productName"`
	PricePositioning string `json:"pricePositioning"`
	CoreProblem      string `json:"coreProblem"`
	ViabilityScore   int    `json:"viabilityScore"`
	FailureRiskScore int    `json:"failureRiskScore"`
	MistakeCount     int    `json:"mistakeCount"`
	StrategyCount    int    `json:"strategyCount"`
}

type Comparison struct {
	First    ComparisonSide `json:"first"`
	Second   ComparisonSide `json:"second"`
	WinnerID string         `json:"winnerId"`
	Headline string         `json:"headline"`
	Verdict  string         `json:"verdict"`
}

func comparisonSide(r *models.AnalysisResult) ComparisonSide {
	return ComparisonSide{
		ID:               r.ID,
		ProductName:      r.ProductName,
		PricePositioning: r.Normalization.PricePositioning,
		CoreProblem:      r.Normalization.CoreProblem,
		ViabilityScore:   r.ViabilityScore(),
		FailureRiskScore: r.FailureRiskScore,
		MistakeCount:     len(r.TopMistakes),
		StrategyCount:    len(r.OptimizationStrategies),
	}
}

// BuildComparison puts two reports side by side. The first wins only with a
// strictly higher viability; ties go to the second.
func BuildComparison(p1, p2 *models.AnalysisResult) Comparison {
	winner, loser := p2, p1
	if p1.ViabilityScore() > p2.ViabilityScore() {
		winner, loser = p1, p2
	}
	return Comparison{
		First:    comparisonSide(p1),
		Second:   comparisonSide(p2),
		WinnerID: winner.ID,
		Headline: fmt.Sprintf("%q shows higher market potential.", winner.ProductName),
		Verdict: fmt.Sprintf(
			"Based on failure risk vectors and competitive positioning, %s has a %d%% viability index vs %d%% for the alternative.",
			winner.ProductName, winner.ViabilityScore(), loser.ViabilityScore()),
	}
}
