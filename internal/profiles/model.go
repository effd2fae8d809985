package profiles

import (
	"strings"
	"time"
)

// BusinessProfile is the accumulating description of one user's business.
type BusinessProfile struct {
	UserID          string         `json:"userId"`
	CompanyName     string         `json:"companyName,omitempty"`
	Product         Product        `json:"product"`
	Capacity        Capacity       `json:"capacity"`
	Category        string         `json:"category,omitempty"`
	Location        Location       `json:"location"`
	Background      string         `json:"background,omitempty"`
	Language        string         `json:"language,omitempty"`
	ExportInterest  ExportInterest `json:"exportInterest"`
	ProductImageRef string         `json:"productImageRef,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Product describes what the business sells.
type Product struct {
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	UniqueFeatures string `json:"uniqueFeatures,omitempty"`
}

// Capacity is production volume per timeframe. Amount 0 means unknown.
type Capacity struct {
	Amount    float64 `json:"amount,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Timeframe string  `json:"timeframe,omitempty"`
}

// Location is where production happens.
type Location struct {
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	Country  string `json:"country,omitempty"`
}

// ExportInterest captures what the user said about exporting so far.
type ExportInterest struct {
	TargetCountries []string `json:"targetCountries,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	CurrentMarkets  []string `json:"currentMarkets,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Challenges      []string `json:"challenges,omitempty"`
}

// Patch is a partial profile. Nil pointers and empty slices leave the
// stored value untouched.
type Patch struct {
	CompanyName        *string  `json:"companyName,omitempty"`
	ProductName        *string  `json:"productName,omitempty"`
	ProductDescription *string  `json:"productDescription,omitempty"`
	UniqueFeatures     *string  `json:"uniqueFeatures,omitempty"`
	CapacityAmount     *float64 `json:"capacityAmount,omitempty"`
	CapacityUnit       *string  `json:"capacityUnit,omitempty"`
	CapacityTimeframe  *string  `json:"capacityTimeframe,omitempty"`
	Category           *string  `json:"category,omitempty"`
	City               *string  `json:"city,omitempty"`
	Province           *string  `json:"province,omitempty"`
	Country            *string  `json:"country,omitempty"`
	Background         *string  `json:"background,omitempty"`
	Language           *string  `json:"language,omitempty"`
	ExportExperience   *string  `json:"exportExperience,omitempty"`
	TargetCountries    []string `json:"targetCountries,omitempty"`
	CurrentMarkets     []string `json:"currentMarkets,omitempty"`
	Certifications     []string `json:"certifications,omitempty"`
	Challenges         []string `json:"challenges,omitempty"`
	ProductImageRef    *string  `json:"productImageRef,omitempty"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}

// Float returns a pointer to f, for building patches.
func Float(f float64) *float64 {
	return &f
}

// PrefersEnglish reports whether the conversation language recorded on the
// profile is English. Indonesian is the default.
func (p BusinessProfile) PrefersEnglish() bool {
	lang := strings.ToLower(strings.TrimSpace(p.Language))
	return strings.HasPrefix(lang, "en") || strings.Contains(lang, "inggris")
}
