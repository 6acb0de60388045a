package services

import (
	"net/url"
	"strings"

	"github.com/markdave123-py/insightcart/internal/models"
)

// LockedMessage replaces owner-only sections for everyone else.
const LockedMessage = "Full competitor comparisons, GTM roadmaps, and distribution strategies are restricted to the product owner. Community feedback is visible on the discovery feed."

// CanViewFull reports whether user may see every section of report.
func CanViewFull(report *models.AnalysisResult, user *models.User) bool {
	return report != nil && user != nil && report.UserID == user.ID
}

// CanMutate reports whether user may change the listing of report or export it.
func CanMutate(report *models.AnalysisResult, user *models.User) bool {
	return CanViewFull(report, user)
}

// canSee is the lookup rule: owners see everything, others only public reports.
func canSee(report *models.AnalysisResult, user *models.User) bool {
	return report != nil && (report.IsPublic || CanViewFull(report, user))
}

// ReportView is the report as returned to a particular viewer. The owner-only
// fields stay nil for anyone but the owner.
type ReportView struct {
	ID               string               `json:"id"`
	UserName         string               `json:"userName,omitempty"`
	Timestamp        int64                `json:"timestamp"`
	ProductName      string               `json:"productName"`
	SelectedMode     string               `json:"selectedMode"`
	DataConfidence   string               `json:"dataConfidence"`
	Summary          string               `json:"summary"`
	Normalization    models.Normalization `json:"normalization"`
	FailureRiskScore int                  `json:"failureRiskScore"`
	ViabilityScore   int                  `json:"viabilityScore"`
	IsPublic         bool                 `json:"isPublic"`
	IsOwner          bool                 `json:"isOwner"`

	AverageRating float64             `json:"averageRating"`
	RatingCount   int                 `json:"ratingCount"`
	Ratings       []models.Rating     `json:"ratings"`
	Suggestions   []models.Suggestion `json:"suggestions"`

	TopMistakes            []models.Mistake      `json:"topMistakes,omitempty"`
	OptimizationStrategies []models.Strategy     `json:"optimizationStrategies,omitempty"`
	SalesStrategy          []models.SalesChannel `json:"salesStrategy,omitempty"`
	GTMPlan                *models.GTMPlan       `json:"gtmPlan,omitempty"`
	CompetitiveAnalysis    []models.Competitor   `json:"competitiveAnalysis,omitempty"`

	Locked        bool   `json:"locked"`
	LockedMessage string `json:"lockedMessage,omitempty"`

	CanToggleListing bool   `json:"canToggleListing"`
	CanExport        bool   `json:"canExport"`
	ShareLink        string `json:"shareLink,omitempty"`

	CanRate    bool `json:"canRate"`
	CanSuggest bool `json:"canSuggest"`
	MyRating   int  `json:"myRating,omitempty"`
}

type ReportViewOptions struct {
	FromFeed      bool
	ShareBaseURL  string
	ExportEnabled bool
}

func NewReportView(report *models.AnalysisResult, viewer *models.User, opts ReportViewOptions) ReportView {
	r := report.Clone()
	v := ReportView{
		ID:               r.ID,
		UserName:         r.UserName,
		Timestamp:        r.Timestamp,
		ProductName:      r.ProductName,
		SelectedMode:     r.SelectedMode,
		DataConfidence:   r.DataConfidence,
		Summary:          r.Summary,
		Normalization:    r.Normalization,
		FailureRiskScore: r.FailureRiskScore,
		ViabilityScore:   r.ViabilityScore(),
		IsPublic:         r.IsPublic,
		AverageRating:    r.AverageRating(),
		RatingCount:      len(r.Ratings),
		Ratings:          nonNilRatings(r.Ratings),
		Suggestions:      nonNilSuggestions(r.Suggestions),
	}

	if CanViewFull(r, viewer) {
		v.IsOwner = true
		v.TopMistakes = r.TopMistakes
		v.OptimizationStrategies = r.OptimizationStrategies
		v.SalesStrategy = r.SalesStrategy
		v.GTMPlan = &r.GTMPlan
		v.CompetitiveAnalysis = r.CompetitiveAnalysis
		v.CanToggleListing = CanMutate(r, viewer)
		v.CanExport = opts.ExportEnabled && CanMutate(r, viewer)
		v.ShareLink = ShareLink(opts.ShareBaseURL, r.ID)
	} else {
		v.Locked = true
		v.LockedMessage = LockedMessage
	}

	if opts.FromFeed && viewer != nil {
		v.CanRate = true
		v.CanSuggest = true
		v.MyRating = r.RatingBy(viewer.ID)
	}
	return v
}

// ShareLink is the deep link a report is shared under.
func ShareLink(baseURL, reportID string) string {
	if baseURL == "" || reportID == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "reportId=" + url.QueryEscape(reportID)
}

func nonNilRatings(r []models.Rating) []models.Rating {
	if r == nil {
		return []models.Rating{}
	}
	return r
}

func nonNilSuggestions(s []models.Suggestion) []models.Suggestion {
	if s == nil {
		return []models.Suggestion{}
	}
	return s
}
