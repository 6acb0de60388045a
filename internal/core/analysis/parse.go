package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/markdave123-py/insightcart/internal/models"
)

var (
	// ErrMalformedResponse means the model replied but the text was empty,
	// not JSON, or did not match the audit schema.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRequestFailed wraps any transport or service error from the model.
	ErrRequestFailed = errors.New("request failed")
)

// payload mirrors the response schema. Numbers arrive as JSON numbers that
// may carry a fraction, so they are decoded as float64 and rounded.
type payload struct {
	ProductName            string               `json:"productName"`
	SelectedMode           string               `json:"selectedMode"`
	DataConfidence         string               `json:"dataConfidence"`
	Summary                string               `json:"summary"`
	Normalization          models.Normalization `json:"normalization"`
	FailureRiskScore       float64              `json:"failureRiskScore"`
	TopMistakes            []mistakePayload     `json:"topMistakes"`
	OptimizationStrategies []models.Strategy    `json:"optimizationStrategies"`
	SalesStrategy          []channelPayload     `json:"salesStrategy"`
	GTMPlan                models.GTMPlan       `json:"gtmPlan"`
	CompetitiveAnalysis    []models.Competitor  `json:"competitiveAnalysis"`
}

type mistakePayload struct {
	Rank             float64 `json:"rank"`
	Title            string  `json:"title"`
	WhyItMatters     string  `json:"whyItMatters"`
	ConversionImpact string  `json:"conversionImpact"`
	Severity         string  `json:"severity"`
}

type channelPayload struct {
	Rank            float64 `json:"rank"`
	Platform        string  `json:"platform"`
	ContentFormat   string  `json:"contentFormat"`
	CreatorType     string  `json:"creatorType"`
	ConversionLogic string  `json:"conversionLogic"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// stripFences removes a surrounding ```json ... ``` block if the model added one.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// ParseResult validates the model's reply and converts it into an
// AnalysisResult carrying only the audit fields.
func ParseResult(text string) (*models.AnalysisResult, error) {
	body := stripFences(text)
	if body == "" {
		return nil, malformed("empty response from AI engine")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, malformed("not a JSON object: %v", err)
	}
	for _, key := range requiredTopLevel {
		raw, ok := fields[key]
		if !ok || string(raw) == "null" {
			return nil, malformed("missing field %q", key)
		}
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, malformed("schema mismatch: %v", err)
	}
	return p.toResult()
}

func (p *payload) toResult() (*models.AnalysisResult, error) {
	if strings.TrimSpace(p.ProductName) == "" {
		return nil, malformed("productName is empty")
	}
	if math.IsNaN(p.FailureRiskScore) || p.FailureRiskScore < 0 || p.FailureRiskScore > 100 {
		return nil, malformed("failureRiskScore %v outside 0..100", p.FailureRiskScore)
	}
	confidence, ok := canonical(p.DataConfidence, confidences, nil)
	if !ok {
		return nil, malformed("unknown dataConfidence %q", p.DataConfidence)
	}
	n := p.Normalization
	if n.CoreProblem == "" || n.BuyerPersona == "" || n.ValueProp == "" || n.PricePositioning == "" {
		return nil, malformed("normalization is incomplete")
	}
	if len(p.TopMistakes) == 0 {
		return nil, malformed("topMistakes is empty")
	}

	res := &models.AnalysisResult{
		ProductName:      strings.TrimSpace(p.ProductName),
		SelectedMode:     strings.TrimSpace(p.SelectedMode),
		DataConfidence:   confidence,
		Summary:          p.Summary,
		Normalization:    n,
		FailureRiskScore: int(math.Round(p.FailureRiskScore)),
		GTMPlan:          p.GTMPlan,
	}
	if res.Normalization.InitialRiskFlags == nil {
		res.Normalization.InitialRiskFlags = []string{}
	}

	for _, m := range p.TopMistakes {
		sev, ok := canonical(m.Severity, severities, map[string]string{"medium": "Moderate"})
		if !ok {
			return nil, malformed("unknown severity %q", m.Severity)
		}
		res.TopMistakes = append(res.TopMistakes, models.Mistake{
			Rank:             int(math.Round(m.Rank)),
			Title:            m.Title,
			WhyItMatters:     m.WhyItMatters,
			ConversionImpact: m.ConversionImpact,
			Severity:         sev,
		})
	}
	sort.SliceStable(res.TopMistakes, func(i, j int) bool { return res.TopMistakes[i].Rank < res.TopMistakes[j].Rank })

	for _, s := range p.OptimizationStrategies {
		kind, ok := canonical(s.Category, strategyKinds, map[string]string{
			"features": "Features/Bundles", "bundles": "Features/Bundles", "features / bundles": "Features/Bundles",
			"positioning": "Repositioning",
		})
		if !ok {
			return nil, malformed("unknown strategy category %q", s.Category)
		}
		impact, ok := canonical(s.Impact, impacts, nil)
		if !ok {
			return nil, malformed("unknown strategy impact %q", s.Impact)
		}
		s.Category, s.Impact = kind, impact
		res.OptimizationStrategies = append(res.OptimizationStrategies, s)
	}

	for _, c := range p.SalesStrategy {
		res.SalesStrategy = append(res.SalesStrategy, models.SalesChannel{
			Rank:            int(math.Round(c.Rank)),
			Platform:        c.Platform,
			ContentFormat:   c.ContentFormat,
			CreatorType:     c.CreatorType,
			ConversionLogic: c.ConversionLogic,
		})
	}
	sort.SliceStable(res.SalesStrategy, func(i, j int) bool { return res.SalesStrategy[i].Rank < res.SalesStrategy[j].Rank })

	res.CompetitiveAnalysis = p.CompetitiveAnalysis
	return res, nil
}

// canonical matches v case-insensitively against allowed, then aliases.
func canonical(v string, allowed []string, aliases map[string]string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if strings.ToLower(a) == key {
			return a, true
		}
	}
	if alias, ok := aliases[key]; ok {
		return alias, true
	}
	return "", false
}
