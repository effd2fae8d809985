package llm

import (
	"context"
	"strings"
)

// Placeholder is an offline engine for local development. It returns
// fixed replies chosen by the kind of prompt it receives.
type Placeholder struct{}

const placeholderAssessment = `{
  "readiness_score": 65,
  "category_scores": {
    "regulatory_compliance": 60,
    "market_viability": 70,
    "documentation_readiness": 55,
    "competitive_positioning": 75
  },
  "certifications": [
    {"name": "Export Registration (NIB)", "requirement_level": "mandatory", "estimated_time": "2-4 weeks", "estimated_cost": "IDR 0-1,000,000", "issuing_body": "OSS / BKPM"}
  ],
  "compliance_gaps": [
    {"type": "documentation", "description": "Certificate of origin not yet prepared", "required_action": "Apply for SKA at the trade office", "priority": "medium"}
  ],
  "recommendations": [
    {"category": "market entry", "text": "Start with a small trial shipment", "rationale": "Limits risk while validating demand"}
  ],
  "action_items": ["Register as an exporter", "Prepare product labeling in the target language"],
  "timeline_estimate": "3-6 months",
  "export_readiness_level": "Needs Preparation"
}`

// Invoke returns a canned reply and never fails.
func (Placeholder) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify("placeholder", err)
	}
	switch {
	case strings.Contains(prompt, "Data Extraction Assistant"):
		return "{}", nil
	case strings.Contains(prompt, "export readiness to "):
		return placeholderAssessment, nil
	default:
		return "Halo! Saya Exporo, asisten profil bisnis Anda. Boleh saya tahu nama perusahaan Anda?", nil
	}
}

var _ Engine = Placeholder{}
