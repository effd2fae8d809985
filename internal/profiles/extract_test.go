package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	raw := "Berikut data yang saya temukan:\n```json\n" + `{
  "company_name": "CV Maju Jaya",
  "product_details": {"name": "Keripik Tempe", "description": "Keripik renyah", "unique_features": "Not specified"},
  "production_capacity": {"amount": "1,500", "unit": "kg", "timeframe": "month"},
  "product_category": "Food & Beverages",
  "production_location": {"city": "Malang", "province": "Jawa Timur", "country": "Indonesia"},
  "business_background": "",
  "conversation_language": "Indonesian",
  "export_readiness": {
    "target_countries": ["Jepang", "Malaysia", "Mars"],
    "export_experience": "Belum pernah",
    "current_markets": "Jakarta, Surabaya",
    "certifications_obtained": ["PIRT", "Halal MUI"],
    "main_challenges": []
  }
}` + "\n```"

	patch, ok := ParseExtraction(raw)
	require.True(t, ok)

	var p BusinessProfile
	Apply(&p, patch)
	assert.Equal(t, "CV Maju Jaya", p.CompanyName)
	assert.Equal(t, "Keripik Tempe", p.Product.Name)
	assert.Empty(t, p.Product.UniqueFeatures)
	assert.Equal(t, 1500.0, p.Capacity.Amount)
	assert.Equal(t, "month", p.Capacity.Timeframe)
	assert.Equal(t, "Malang", p.Location.City)
	assert.Empty(t, p.Background)
	assert.Equal(t, []string{"Japan", "Malaysia", "Mars"}, p.ExportInterest.TargetCountries)
	assert.Equal(t, []string{"Jakarta", "Surabaya"}, p.ExportInterest.CurrentMarkets)
	assert.Equal(t, []string{"PIRT", "Halal MUI"}, p.ExportInterest.Certifications)
	assert.Nil(t, p.ExportInterest.Challenges)
}

func TestParseExtractionToleratesWrongTypes(t *testing.T) {
	patch, ok := ParseExtraction(`{"company_name": ["x"], "product_details": "none", "production_capacity": {"amount": true}}`)
	require.True(t, ok)
	assert.True(t, patch.IsEmpty())
}

func TestParseExtractionWithoutJSON(t *testing.T) {
	_, ok := ParseExtraction("Maaf, saya tidak menemukan data.")
	assert.False(t, ok)

	_, ok = ParseExtraction("{ not json }")
	assert.False(t, ok)
}
