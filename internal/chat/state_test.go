package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		text    string
		to      State
		country string
	}{
		{"small talk stays idle", StateIdle, "halo, saya jual keripik", StateIdle, ""},
		{"trigger with country", StateIdle, "tolong cek kesiapan ekspor ke Jepang", StateReadyToAnalyze, "Japan"},
		{"trigger without country", StateIdle, "saya mau cek kesiapan ekspor", StateAwaitingCountry, ""},
		{"country without trigger", StateIdle, "saya pernah ke Jepang", StateIdle, ""},
		{"awaiting resolves bare country", StateAwaitingCountry, "Amerika Serikat", StateReadyToAnalyze, "United States"},
		{"awaiting resolves alias in sentence", StateAwaitingCountry, "ke korea selatan saja", StateReadyToAnalyze, "South Korea"},
		{"awaiting ignores short alias inside sentence", StateAwaitingCountry, "tell us more", StateIdle, ""},
		{"awaiting accepts bare short alias", StateAwaitingCountry, "US", StateReadyToAnalyze, "United States"},
		{"awaiting repeats trigger", StateAwaitingCountry, "analisis ekspor", StateAwaitingCountry, ""},
		{"awaiting abandons", StateAwaitingCountry, "nanti saja", StateIdle, ""},
		{"stale ready behaves as idle", StateReadyToAnalyze, "terima kasih", StateIdle, ""},
		{"english trigger", StateIdle, "export readiness for Malaysia please", StateReadyToAnalyze, "Malaysia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.from, tt.text)
			assert.Equal(t, tt.from, got.From)
			assert.Equal(t, tt.to, got.To)
			assert.Equal(t, tt.country, got.Country)
		})
	}
}
