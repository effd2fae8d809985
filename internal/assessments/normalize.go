package assessments

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

// overrideTolerance is how far a declared overall score may drift from the
// computed mean before it is reported as overridden.
const overrideTolerance = 0.5

// Normalize converts a raw engine reply into a Record. It never panics and
// never fails: anything that is not a valid structured block becomes the
// unstructured variant with raw preserved verbatim.
func Normalize(raw string) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("normalize.panic", map[string]any{"panic": r})
			rec = fallback(raw)
		}
	}()

	doc, ok := findScoredObject(raw)
	if !ok {
		return fallback(raw)
	}
	return structured(doc)
}

// findScoredObject returns the first JSON object in raw that carries a
// category_scores key and passes validation. Invalid scored blocks are
// skipped in favour of later ones.
func findScoredObject(raw string) (map[string]any, bool) {
	for _, candidate := range util.JSONObjectCandidates(raw) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
			continue
		}
		if _, ok := doc["category_scores"]; !ok {
			continue
		}
		if problems := validateStructured(doc); len(problems) > 0 {
			telemetry.Warn("normalize.invalid_structure", map[string]any{"problems": problems})
			continue
		}
		return doc, true
	}
	return nil, false
}

func structured(doc map[string]any) Record {
	cs, _ := doc["category_scores"].(map[string]any)
	scores := CategoryScores{
		RegulatoryCompliance:   number(cs["regulatory_compliance"]),
		MarketViability:        number(cs["market_viability"]),
		DocumentationReadiness: number(cs["documentation_readiness"]),
		CompetitivePositioning: number(cs["competitive_positioning"]),
	}
	mean := scores.Mean()
	overall := int(math.Round(mean))

	rec := Record{
		Variant:               VariantStructured,
		OverallScore:          &overall,
		Scores:                &scores,
		Certifications:        certifications(doc),
		Gaps:                  gaps(doc["compliance_gaps"]),
		Recommendations:       recommendations(doc["recommendations"]),
		Timeline:              text(doc["timeline_estimate"]),
		ActionItems:           strs(doc["action_items"]),
		ReadinessLevel:        text(doc["export_readiness_level"]),
		MarketInsights:        text(doc["market_insights"]),
		CompetitiveAdvantages: strs(doc["competitive_advantages"]),
		PotentialChallenges:   strs(doc["potential_challenges"]),
	}
	for _, key := range []string{"readiness_score", "overall_score"} {
		if v, ok := doc[key].(float64); ok {
			declared := v
			rec.DeclaredOverall = &declared
			rec.OverallOverridden = math.Abs(declared-mean) > overrideTolerance
			break
		}
	}
	return rec
}

func certifications(doc map[string]any) []Certification {
	var out []Certification
	if items, ok := doc["certifications"].([]any); ok {
		for _, item := range items {
			switch v := item.(type) {
			case map[string]any:
				name := text(v["name"])
				if name == "" {
					continue
				}
				out = append(out, Certification{
					Name:             name,
					RequirementLevel: parseLevel(text(v["requirement_level"])),
					EstimatedTime:    text(v["estimated_time"]),
					EstimatedCost:    text(v["estimated_cost"]),
					IssuingBody:      text(v["issuing_body"]),
				})
			case string:
				if name := strings.TrimSpace(v); name != "" {
					out = append(out, Certification{Name: name, RequirementLevel: LevelRecommended})
				}
			}
		}
	}
	if len(out) == 0 {
		for _, name := range strs(doc["certification_priority"]) {
			out = append(out, Certification{Name: name, RequirementLevel: LevelRecommended})
		}
	}
	return out
}

func gaps(v any) []ComplianceGap {
	items, _ := v.([]any)
	var out []ComplianceGap
	for _, item := range items {
		switch g := item.(type) {
		case map[string]any:
			desc := text(g["description"])
			if desc == "" {
				continue
			}
			out = append(out, ComplianceGap{
				Type:           text(g["type"]),
				Description:    desc,
				RequiredAction: text(g["required_action"]),
				Priority:       parsePriority(text(g["priority"])),
			})
		case string:
			if desc := strings.TrimSpace(g); desc != "" {
				out = append(out, ComplianceGap{Description: desc, Priority: PriorityMedium})
			}
		}
	}
	return out
}

func recommendations(v any) []Recommendation {
	items, _ := v.([]any)
	var out []Recommendation
	for _, item := range items {
		switch r := item.(type) {
		case map[string]any:
			t := text(r["text"])
			if t == "" {
				continue
			}
			out = append(out, Recommendation{Category: text(r["category"]), Text: t, Rationale: text(r["rationale"])})
		case string:
			if t := strings.TrimSpace(r); t != "" {
				out = append(out, Recommendation{Text: t})
			}
		}
	}
	return out
}

func parseLevel(s string) RequirementLevel {
	switch l := strings.ToLower(s); {
	case strings.Contains(l, "mandatory"), strings.Contains(l, "required"), strings.Contains(l, "wajib"):
		return LevelMandatory
	case strings.Contains(l, "optional"), strings.Contains(l, "opsional"):
		return LevelOptional
	default:
		return LevelRecommended
	}
}

func parsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "tinggi", "critical":
		return PriorityHigh
	case "low", "rendah":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

func text(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func strs(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

var (
	bulletRE      = regexp.MustCompile(`^\s*(?:[-*•]|\d{1,2}[.)])\s+(.+)$`)
	mentionedRE   = regexp.MustCompile(`\b(\d{1,3})\s*/\s*100\b`)
	mandatoryRE   = regexp.MustCompile(`(?i)\b(mandatory|wajib|required)\b`)
	recommendedRE = regexp.MustCompile(`(?i)\b(recommended|disarankan|dianjurkan)\b`)
	gapRE         = regexp.MustCompile(`(?i)\b(gap|missing|kekurangan|belum)\b`)
)

// fallback builds the unstructured variant, recovering what it can from
// bulleted lines without ever producing scores.
func fallback(raw string) Record {
	rec := Record{Variant: VariantUnstructured, FallbackText: raw}

	for _, line := range strings.Split(raw, "\n") {
		m := bulletRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := cleanBullet(m[1])
		if item == "" {
			continue
		}
		switch {
		case mandatoryRE.MatchString(item):
			rec.Certifications = append(rec.Certifications, Certification{Name: item, RequirementLevel: LevelMandatory})
		case recommendedRE.MatchString(item):
			rec.Certifications = append(rec.Certifications, Certification{Name: item, RequirementLevel: LevelRecommended})
		case gapRE.MatchString(item):
			rec.Gaps = append(rec.Gaps, ComplianceGap{Description: item, Priority: PriorityMedium})
		}
	}

	var mentioned []int
	for _, m := range mentionedRE.FindAllStringSubmatch(raw, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 100 {
			mentioned = append(mentioned, n)
		}
	}
	if len(mentioned) > 0 {
		rec.Commentary = &Commentary{MentionedScores: mentioned}
	}
	return rec
}

func cleanBullet(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(strings.TrimSuffix(s, ":"))
}
