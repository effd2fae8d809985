package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCountry(t *testing.T) {
	c, ok := LookupCountry("malaysia")
	require.True(t, ok)
	assert.Equal(t, "MY", c.Code)

	c, ok = LookupCountry("eu")
	require.True(t, ok)
	assert.Equal(t, "European Union", c.Name)

	_, ok = LookupCountry("Atlantis")
	assert.False(t, ok)
}

func TestCountriesReturnsCopy(t *testing.T) {
	list := Countries()
	list[0].Name = "mutated"
	list[0].Aliases[0] = "mutated"

	again := Countries()
	assert.Equal(t, "United States", again[0].Name)
	assert.Equal(t, "united states", again[0].Aliases[0])
	assert.Equal(t, []string{
		"United States", "European Union", "Japan", "Singapore",
		"Malaysia", "Australia", "South Korea", "China",
	}, CountryNames())
}

func TestCertifications(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category string
		want     []string
	}{
		{name: "us food", code: "US", category: "Food & Beverages", want: []string{"FDA Registration", "FSMA Compliance", "Nutritional Labeling"}},
		{name: "eu textiles lower code", code: "eu", category: "Textiles & Apparel", want: []string{"REACH Compliance", "Oeko-Tex Standards", "CE Marking"}},
		{name: "indonesian category", code: "JP", category: "Makanan Ringan", want: []string{"JAS Standards", "Food Sanitation Law", "Import Notification"}},
		{name: "no japan furniture table", code: "JP", category: "Furniture", want: nil},
		{name: "unknown country", code: "MY", category: "Food & Beverages", want: nil},
		{name: "unknown category", code: "US", category: "Handicrafts", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Certifications(tt.code, tt.category))
		})
	}
}

func TestListCountriesHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/countries", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []Country `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 8)
	assert.Equal(t, "Malaysia", body.Items[4].Name)
	assert.Equal(t, "Low", body.Items[4].Difficulty)
}
