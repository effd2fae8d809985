package profiles

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/magungh1/exporo-sme-export-assistant/internal/detector"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

// ParseExtraction maps an extraction model reply onto a Patch. The reply
// is expected to contain a JSON object in the extraction schema, possibly
// wrapped in prose or a code fence. ok is false when no object decodes.
func ParseExtraction(raw string) (patch Patch, ok bool) {
	for _, candidate := range util.JSONObjectCandidates(raw) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
			continue
		}
		return patchFromDoc(doc), true
	}
	return Patch{}, false
}

func patchFromDoc(doc map[string]any) Patch {
	product := objectField(doc, "product_details")
	capacity := objectField(doc, "production_capacity")
	location := objectField(doc, "production_location")
	readiness := objectField(doc, "export_readiness")

	p := Patch{
		CompanyName:        text(doc, "company_name"),
		ProductName:        text(product, "name"),
		ProductDescription: text(product, "description"),
		UniqueFeatures:     text(product, "unique_features"),
		CapacityAmount:     number(capacity, "amount"),
		CapacityUnit:       text(capacity, "unit"),
		CapacityTimeframe:  text(capacity, "timeframe"),
		Category:           text(doc, "product_category"),
		City:               text(location, "city"),
		Province:           text(location, "province"),
		Country:            text(location, "country"),
		Background:         text(doc, "business_background"),
		Language:           text(doc, "conversation_language"),
		ExportExperience:   text(readiness, "export_experience"),
		CurrentMarkets:     list(readiness, "current_markets"),
		Certifications:     list(readiness, "certifications_obtained"),
		Challenges:         list(readiness, "main_challenges"),
	}
	for _, c := range list(readiness, "target_countries") {
		if country, ok := detector.ResolveCountry(c); ok {
			c = country.Name
		}
		p.TargetCountries = append(p.TargetCountries, c)
	}
	return p
}

func objectField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func text(m map[string]any, key string) *string {
	switch v := m[key].(type) {
	case string:
		if Meaningful(v) {
			return String(v)
		}
	case float64:
		return String(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return nil
}

func number(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		if v > 0 {
			return Float(v)
		}
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f > 0 {
			return Float(f)
		}
	}
	return nil
}

func list(m map[string]any, key string) []string {
	var out []string
	switch v := m[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && Meaningful(s) {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if Meaningful(part) {
				out = append(out, strings.TrimSpace(part))
			}
		}
	}
	return out
}
