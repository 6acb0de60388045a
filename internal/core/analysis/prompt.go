package analysis

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/insightcart/internal/models"
)

// ModeFor picks link-based analysis whenever a non-blank product link is present.
func ModeFor(input models.ProductInput) string {
	if strings.TrimSpace(input.ProductLink) != "" {
		return models.ModeLinkBased
	}
	return models.ModeManual
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// BuildPrompt renders the audit instructions for input. pageExtract is the
// optional scanned text of the product page and is only used in link mode.
func BuildPrompt(input models.ProductInput, pageExtract string) string {
	mode := ModeFor(input)
	linkMode := mode == models.ModeLinkBased

	banner := "MODE B: MANUAL DATA ANALYSIS"
	if linkMode {
		banner = "MODE A: LINK-BASED ANALYSIS"
	}

	var b strings.Builder
	b.WriteString("You are InsightCart, a ruthless product market intelligence engine.\n\n")
	b.WriteString("CRITICAL INSTRUCTION:\n")
	fmt.Fprintf(&b, "We are operating in %s.\n\n", banner)

	b.WriteString("INPUT DATA FOR AUDIT:\n")
	fmt.Fprintf(&b, "- Product Link: %s\n", orDefault(input.ProductLink, "N/A"))
	fmt.Fprintf(&b, "- Reference Name: %s\n", input.Name)
	fmt.Fprintf(&b, "- Manual Description: %s\n", orDefault(input.Description, "N/A"))
	fmt.Fprintf(&b, "- Manual Category: %s\n", orDefault(input.Category, "N/A"))
	fmt.Fprintf(&b, "- Manual Price: %s\n", orDefault(input.Price, "N/A"))
	fmt.Fprintf(&b, "- Manual Audience: %s\n", orDefault(input.TargetAudience, "N/A"))
	fmt.Fprintf(&b, "- Region: %s\n", orDefault(input.Country, "Global"))
	fmt.Fprintf(&b, "- Platform: %s\n\n", orDefault(input.Platform, "General Web"))

	if linkMode {
		b.WriteString("MODE A PROTOCOL (AUTO-EXTRACT):\n")
		b.WriteString("1. Scan the \"Product Link\" provided.\n")
		b.WriteString("2. Extract/Infer Name, Category, Pricing, Trust Signals (reviews, badges), and Target Audience persona from the URL structure, the page extract below and common knowledge of this store/platform.\n")
		b.WriteString("3. Label all inferred data clearly in the summary as \"Extracted from source\".\n")
		b.WriteString("4. Ignore empty manual fields; the link is the primary source.\n\n")
		if extract := strings.TrimSpace(pageExtract); extract != "" {
			b.WriteString("PAGE EXTRACT:\n")
			b.WriteString(extract)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("MODE B PROTOCOL (STRICT DATA):\n")
		b.WriteString("1. Use ONLY the provided manual text.\n")
		b.WriteString("2. Do NOT assume the product has reviews or traction unless explicitly stated in the description.\n")
		b.WriteString("3. If critical data (price/audience) is vague, flag it as a HIGH RISK in the audit.\n\n")
	}

	b.WriteString("REQUIRED OUTPUT MODULES:\n")
	fmt.Fprintf(&b, "1. Select Mode: Must state %q.\n", mode)
	b.WriteString("2. Data Confidence Level (High/Medium/Low).\n")
	b.WriteString("3. Normalization: Normalize input into Core Problem, Buyer Persona, Value Prop, Price Positioning, and Risk Flags.\n")
	b.WriteString("4. Risk Audit: 3-5 ranked failure points with severity Critical/High/Moderate.\n")
	b.WriteString("5. Optimization: exactly 4 growth strategies, one per category Pricing, Features/Bundles, Repositioning, Trust.\n")
	b.WriteString("6. Channels: 3 ranked distribution platforms.\n")
	b.WriteString("7. Roadmap: 30-day GTM split into days 1-7, days 8-21 and days 22-30.\n")
	b.WriteString("8. Competitors: exactly 3 market rivals.\n")
	b.WriteString("9. failureRiskScore: 0-100, lower is better.\n\n")

	b.WriteString("STRICT FORMATTING:\n")
	b.WriteString("- JSON response only.\n")
	b.WriteString("- No fluff. Punchy, professional tone.\n")
	return b.String()
}
