package analysis

import "github.com/google/generative-ai-go/genai"

var (
	severities    = []string{"Critical", "High", "Moderate"}
	impacts       = []string{"Low", "Medium", "High"}
	confidences   = []string{"High", "Medium", "Low"}
	strategyKinds = []string{"Pricing", "Features/Bundles", "Repositioning", "Trust"}
)

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
func num() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }

func enum(values []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: values}
}

func strList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: str()}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func list(item *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: item}
}

// requiredTopLevel is shared by the schema and by the parser's presence check.
var requiredTopLevel = []string{
	"productName", "selectedMode", "dataConfidence", "normalization", "failureRiskScore",
	"topMistakes", "optimizationStrategies", "salesStrategy", "gtmPlan", "competitiveAnalysis", "summary",
}

// ResponseSchema describes the audit object the model must return.
func ResponseSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"productName":    str(),
		"selectedMode":   str(),
		"dataConfidence": enum(confidences),
		"summary":        str(),
		"normalization": object(map[string]*genai.Schema{
			"coreProblem":      str(),
			"buyerPersona":     str(),
			"valueProp":        str(),
			"pricePositioning": str(),
			"initialRiskFlags": strList(),
		}, "coreProblem", "buyerPersona", "valueProp", "pricePositioning", "initialRiskFlags"),
		"failureRiskScore": num(),
		"topMistakes": list(object(map[string]*genai.Schema{
			"rank":             num(),
			"title":            str(),
			"whyItMatters":     str(),
			"conversionImpact": str(),
			"severity":         enum(severities),
		}, "rank", "title", "whyItMatters", "conversionImpact", "severity")),
		"optimizationStrategies": list(object(map[string]*genai.Schema{
			"category":     enum(strategyKinds),
			"whatToChange": str(),
			"whyItWorks":   str(),
			"impact":       enum(impacts),
		}, "category", "whatToChange", "whyItWorks", "impact")),
		"salesStrategy": list(object(map[string]*genai.Schema{
			"rank":            num(),
			"platform":        str(),
			"contentFormat":   str(),
			"creatorType":     str(),
			"conversionLogic": str(),
		}, "rank", "platform", "contentFormat", "creatorType", "conversionLogic")),
		"gtmPlan": object(map[string]*genai.Schema{
			"launchAngle": str(),
			"timeline": object(map[string]*genai.Schema{
				"days1to7":   str(),
				"days8to21":  str(),
				"days22to30": str(),
			}, "days1to7", "days8to21", "days22to30"),
			"adHooks":       strList(),
			"outreachAngle": str(),
			"funnelStages": list(object(map[string]*genai.Schema{
				"stage":  str(),
				"action": str(),
			}, "stage", "action")),
		}, "launchAngle", "timeline", "adHooks", "outreachAngle", "funnelStages"),
		"competitiveAnalysis": list(object(map[string]*genai.Schema{
			"name":        str(),
			"pricing":     str(),
			"strengths":   strList(),
			"weaknesses":  strList(),
			"positioning": str(),
		}, "name", "pricing", "strengths", "weaknesses", "positioning")),
	}, requiredTopLevel...)
}
