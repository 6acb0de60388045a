package models

import "slices"

// Analysis modes reported on every AnalysisResult.
const (
	ModeLinkBased = "LINK-BASED ANALYSIS"
	ModeManual    = "MANUAL DATA ANALYSIS"
)

// User is the locally fabricated identity created at login.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

// ProductInput is the form payload consumed once by the analysis client.
type ProductInput struct {
	Name           string `json:"name"`
	ProductLink    string `json:"productLink,omitempty"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Price          string `json:"price"`
	TargetAudience string `json:"targetAudience"`
	Country        string `json:"country"`
	Platform       string `json:"platform"`
}

// Suggestion is an append-only community comment on a report.
type Suggestion struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Rating is one user's 1..10 score on a report.
type Rating struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// SavedProduct is an inventory entry owned by a single user.
type SavedProduct struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Timestamp   int64  `json:"timestamp"`
}

type Mistake struct {
	Rank             int    `json:"rank"`
	Title            string `json:"title"`
	WhyItMatters     string `json:"whyItMatters"`
	ConversionImpact string `json:"conversionImpact"`
	Severity         string `json:"severity"` // Critical | High | Moderate
}

type Strategy struct {
	Category     string `json:"category"` // Pricing | Features/Bundles | Repositioning | Trust
	WhatToChange string `json:"whatToChange"`
	WhyItWorks   string `json:"whyItWorks"`
	Impact       string `json:"impact"` // Low | Medium | High
}

type SalesChannel struct {
	Rank            int    `json:"rank"`
	Platform        string `json:"platform"`
	ContentFormat   string `json:"contentFormat"`
	CreatorType     string `json:"creatorType"`
	ConversionLogic string `json:"conversionLogic"`
}

type Timeline struct {
	Days1to7   string `json:"days1to7"`
	Days8to21  string `json:"days8to21"`
	Days22to30 string `json:"days22to30"`
}

type FunnelStage struct {
	Stage  string `json:"stage"`
	Action string `json:"action"`
}

// GTMPlan is the 30 day go-to-market roadmap.
type GTMPlan struct {
	LaunchAngle   string        `json:"launchAngle"`
	Timeline      Timeline      `json:"timeline"`
	AdHooks       []string      `json:"adHooks"`
	OutreachAngle string        `json:"outreachAngle"`
	FunnelStages  []FunnelStage `json:"funnelStages"`
}

type Competitor struct {
	Name        string   `json:"name"`
	Pricing     string   `json:"pricing"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Positioning string   `json:"positioning"`
}

type Normalization struct {
	CoreProblem      string   `json:"coreProblem"`
	BuyerPersona     string   `json:"buyerPersona"`
	ValueProp        string   `json:"valueProp"`
	PricePositioning string   `json:"pricePositioning"`
	InitialRiskFlags []string `json:"initialRiskFlags"`
}

// AnalysisResult is a market viability audit. The analysis client fills the
// audit fields; ID, owner, timestamp, listing flag and community lists are
// attached by the workspace.
type AnalysisResult struct {
	ID                     string         `json:"id"`
	UserID                 string         `json:"userId"`
	UserName               string         `json:"userName,omitempty"`
	Timestamp              int64          `json:"timestamp"`
	ProductName            string         `json:"productName"`
	SelectedMode           string         `json:"selectedMode"`
	DataConfidence         string         `json:"dataConfidence"`
	Normalization          Normalization  `json:"normalization"`
	FailureRiskScore       int            `json:"failureRiskScore"`
	TopMistakes            []Mistake      `json:"topMistakes"`
	OptimizationStrategies []Strategy     `json:"optimizationStrategies"`
	SalesStrategy          []SalesChannel `json:"salesStrategy"`
	GTMPlan                GTMPlan        `json:"gtmPlan"`
	CompetitiveAnalysis    []Competitor   `json:"competitiveAnalysis"`
	Summary                string         `json:"summary"`
	IsPublic               bool           `json:"isPublic"`
	Ratings                []Rating       `json:"ratings"`
	Suggestions            []Suggestion   `json:"suggestions"`
}

// ViabilityScore is the user-facing inverse of the failure risk score.
func (r *AnalysisResult) ViabilityScore() int {
	return 100 - r.FailureRiskScore
}

// AverageRating returns 0 when the report has no ratings.
func (r *AnalysisResult) AverageRating() float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rt := range r.Ratings {
		sum += rt.Score
	}
	return float64(sum) / float64(len(r.Ratings))
}

// RatingBy returns the score userID gave, or 0 if none.
func (r *AnalysisResult) RatingBy(userID string) int {
	for _, rt := range r.Ratings {
		if rt.UserID == userID {
			return rt.Score
		}
	}
	return 0
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Normalization.InitialRiskFlags = slices.Clone(r.Normalization.InitialRiskFlags)
	c.TopMistakes = slices.Clone(r.TopMistakes)
	c.OptimizationStrategies = slices.Clone(r.OptimizationStrategies)
	c.SalesStrategy = slices.Clone(r.SalesStrategy)
	c.GTMPlan.AdHooks = slices.Clone(r.GTMPlan.AdHooks)
	c.GTMPlan.FunnelStages = slices.Clone(r.GTMPlan.FunnelStages)
	c.CompetitiveAnalysis = slices.Clone(r.CompetitiveAnalysis)
	for i := range c.CompetitiveAnalysis {
		c.CompetitiveAnalysis[i].Strengths = slices.Clone(c.CompetitiveAnalysis[i].Strengths)
		c.CompetitiveAnalysis[i].Weaknesses = slices.Clone(c.CompetitiveAnalysis[i].Weaknesses)
	}
	// empty lists stay non-nil and persist as []
	c.Ratings = slices.Clone(r.Ratings)
	c.Suggestions = slices.Clone(r.Suggestions)
	return &c
}

type CategoryTrend struct {
	Name   string `json:"name"`
	Growth string `json:"growth"`
}

type PriceBand struct {
	Band        string `json:"band"`
	SuccessRate string `json:"successRate"`
}

type PlatformScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// TrendingAggregate is a read-only rollup; it is never persisted.
type TrendingAggregate struct {
	TopCategories         []CategoryTrend `json:"topCategories"`
	WinningPriceBands     []PriceBand     `json:"winningPriceBands"`
	PlatformPerformance   []PlatformScore `json:"platformPerformance"`
	CommonWinningPatterns []string        `json:"commonWinningPatterns"`
	CommonFailurePatterns []string        `json:"commonFailurePatterns"`
}
