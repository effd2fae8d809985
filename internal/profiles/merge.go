package profiles

import (
	"math"
	"strings"
)

// placeholders are values extraction models emit for unknown facts.
var placeholders = map[string]bool{
	"not specified":    true,
	"unclear":          true,
	"unknown":          true,
	"belum diisi":      true,
	"tidak diketahui":  true,
	"extraction_error": true,
	"n/a":              true,
	"null":             true,
	"none":             true,
}

// Meaningful reports whether s carries a real value.
func Meaningful(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && !placeholders[strings.ToLower(t)]
}

// Apply merges patch into p field by field and reports whether anything
// changed. Known values are never cleared.
func Apply(p *BusinessProfile, patch Patch) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src == nil || !Meaningful(*src) {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	union := func(dst *[]string, src []string) {
		merged, grew := mergeList(*dst, src)
		if grew {
			*dst = merged
			changed = true
		}
	}

	set(&p.CompanyName, patch.CompanyName)
	set(&p.Product.Name, patch.ProductName)
	set(&p.Product.Description, patch.ProductDescription)
	set(&p.Product.UniqueFeatures, patch.UniqueFeatures)
	if a := patch.CapacityAmount; a != nil && *a > 0 && !math.IsInf(*a, 0) && !math.IsNaN(*a) {
		if p.Capacity.Amount != *a {
			p.Capacity.Amount = *a
			changed = true
		}
	}
	set(&p.Capacity.Unit, patch.CapacityUnit)
	set(&p.Capacity.Timeframe, patch.CapacityTimeframe)
	set(&p.Category, patch.Category)
	set(&p.Location.City, patch.City)
	set(&p.Location.Province, patch.Province)
	set(&p.Location.Country, patch.Country)
	set(&p.Background, patch.Background)
	set(&p.Language, patch.Language)
	set(&p.ExportInterest.Experience, patch.ExportExperience)
	union(&p.ExportInterest.TargetCountries, patch.TargetCountries)
	union(&p.ExportInterest.CurrentMarkets, patch.CurrentMarkets)
	union(&p.ExportInterest.Certifications, patch.Certifications)
	union(&p.ExportInterest.Challenges, patch.Challenges)
	set(&p.ProductImageRef, patch.ProductImageRef)
	return changed
}

// IsEmpty reports whether applying the patch could change any profile.
func (p Patch) IsEmpty() bool {
	var probe BusinessProfile
	return !Apply(&probe, p)
}

// mergeList appends meaningful entries of src missing from dst, comparing
// case-insensitively and keeping first-seen order.
func mergeList(dst, src []string) ([]string, bool) {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, v := range dst {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	out := dst
	grew := false
	for _, v := range src {
		if !Meaningful(v) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(v))
		if seen[key] {
			continue
		}
		seen[key] = true
		if !grew {
			out = append([]string(nil), dst...)
			grew = true
		}
		out = append(out, strings.TrimSpace(v))
	}
	return out, grew
}
