package catalog

import "strings"

// certificationRequirements maps country code, then category keyword, to the
// certifications an exporter is expected to hold.
var certificationRequirements = map[string]map[string][]string{
	"US": {
		"food":        {"FDA Registration", "FSMA Compliance", "Nutritional Labeling"},
		"textiles":    {"CPSIA Compliance", "Flammability Standards", "Labeling Requirements"},
		"electronics": {"FCC Certification", "UL Safety Standards", "Energy Star (optional)"},
		"furniture":   {"CARB Compliance", "CPSIA (children's furniture)", "Flammability Standards"},
	},
	"EU": {
		"food":        {"CE Marking", "HACCP Certification", "Novel Food Regulation"},
		"textiles":    {"REACH Compliance", "Oeko-Tex Standards", "CE Marking"},
		"electronics": {"CE Marking", "RoHS Compliance", "WEEE Directive"},
		"furniture":   {"CE Marking", "REACH Compliance", "Fire Safety Standards"},
	},
	"JP": {
		"food":        {"JAS Standards", "Food Sanitation Law", "Import Notification"},
		"electronics": {"PSE Mark", "VCCI Certification", "Telec Certification"},
		"textiles":    {"JIS Standards", "Safety Standards", "Labeling Requirements"},
	},
}

// categoryKeywords is checked in order; the first keyword contained in the
// lowercased category wins.
var categoryKeywords = []struct {
	keyword string
	matches []string
}{
	{keyword: "food", matches: []string{"food", "beverage", "makanan", "minuman"}},
	{keyword: "textiles", matches: []string{"textile", "apparel", "garment", "tekstil", "pakaian"}},
	{keyword: "electronics", matches: []string{"electronic", "elektronik"}},
	{keyword: "furniture", matches: []string{"furniture", "mebel", "furnitur"}},
}

// Certifications returns the known requirements for a country code and a
// free-form product category. Unknown combinations yield nil.
func Certifications(countryCode, category string) []string {
	byCategory, ok := certificationRequirements[strings.ToUpper(countryCode)]
	if !ok {
		return nil
	}
	keyword := categoryKeyword(category)
	if keyword == "" {
		return nil
	}
	return append([]string(nil), byCategory[keyword]...)
}

func categoryKeyword(category string) string {
	lower := strings.ToLower(category)
	for _, ck := range categoryKeywords {
		for _, m := range ck.matches {
			if strings.Contains(lower, m) {
				return ck.keyword
			}
		}
	}
	return ""
}
