// Package catalog holds the static export reference data: supported target
// countries with their aliases, product categories and certification
// requirements.
package catalog

import "strings"

// Country is a supported export destination.
type Country struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Difficulty string   `json:"difficulty"`
	MarketSize string   `json:"marketSize"`
	Aliases    []string `json:"-"`
}

// countries is in canonical declaration order; detection tie-breaks follow it.
var countries = []Country{
	{Name: "United States", Code: "US", Difficulty: "High", MarketSize: "Large",
		Aliases: []string{"united states", "amerika serikat", "amerika", "usa", "us"}},
	{Name: "European Union", Code: "EU", Difficulty: "High", MarketSize: "Large",
		Aliases: []string{"european union", "uni eropa", "eropa", "europe", "eu"}},
	{Name: "Japan", Code: "JP", Difficulty: "High", MarketSize: "Large",
		Aliases: []string{"japan", "jepang"}},
	{Name: "Singapore", Code: "SG", Difficulty: "Medium", MarketSize: "Medium",
		Aliases: []string{"singapore", "singapura"}},
	{Name: "Malaysia", Code: "MY", Difficulty: "Low", MarketSize: "Medium",
		Aliases: []string{"malaysia"}},
	{Name: "Australia", Code: "AU", Difficulty: "Medium", MarketSize: "Large",
		Aliases: []string{"australia"}},
	{Name: "South Korea", Code: "KR", Difficulty: "Medium", MarketSize: "Large",
		Aliases: []string{"south korea", "korea selatan", "korea"}},
	{Name: "China", Code: "CN", Difficulty: "High", MarketSize: "Very Large",
		Aliases: []string{"china", "cina", "tiongkok"}},
}

var categories = []string{
	"Food & Beverages",
	"Textiles & Apparel",
	"Furniture",
	"Electronics",
	"Handicrafts",
	"Agricultural Products",
	"Chemicals",
	"Automotive Parts",
	"Beauty & Personal Care",
}

// Countries returns the supported countries in declaration order.
func Countries() []Country {
	out := make([]Country, len(countries))
	for i, c := range countries {
		c.Aliases = append([]string(nil), c.Aliases...)
		out[i] = c
	}
	return out
}

// Categories returns the known product categories.
func Categories() []string {
	return append([]string(nil), categories...)
}

// LookupCountry finds a country by canonical name or code, case-insensitively.
func LookupCountry(nameOrCode string) (Country, bool) {
	key := strings.TrimSpace(nameOrCode)
	for _, c := range countries {
		if strings.EqualFold(c.Name, key) || strings.EqualFold(c.Code, key) {
			return c, true
		}
	}
	return Country{}, false
}

// CountryNames returns the canonical names in declaration order.
func CountryNames() []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = c.Name
	}
	return out
}
