package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/covid-dashboard/internal/covid/providers"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, providers.DefaultBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "30", cfg.HistoryDays)
	assert.Equal(t, "Norway", cfg.DefaultCountry)
	assert.Equal(t, []string{"Norway", "Sweden", "Denmark", "Finland"}, cfg.CompareCountries)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 1024, cfg.ChartWidth)
	assert.Equal(t, 512, cfg.ChartHeight)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COVID_API_URL", "http://localhost:3000/v3/covid-19")
	t.Setenv("HISTORY_DAYS", "ALL")
	t.Setenv("DEFAULT_COUNTRY", "Sweden")
	t.Setenv("COMPARE_COUNTRIES", " Italy, ,Spain ")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("CHART_WIDTH", "800")
	t.Setenv("CHART_HEIGHT", "400")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/v3/covid-19", cfg.APIBaseURL)
	assert.Equal(t, "all", cfg.HistoryDays)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 800, cfg.ChartWidth)
	assert.Equal(t, 400, cfg.ChartHeight)

	sel := cfg.Selection()
	assert.Equal(t, "Sweden", sel.Country)
	assert.Equal(t, []string{"Italy", "Spain"}, sel.Compare)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"HTTP_TIMEOUT", "soon"},
		{"REFRESH_INTERVAL", "15"},
		{"HISTORY_DAYS", "-3"},
		{"HISTORY_DAYS", "forever"},
		{"CHART_WIDTH", "not-a-number"},
		{"CHART_WIDTH", "0"},
		{"CHART_HEIGHT", "-5"},
		{"CHART_HEIGHT", "tall"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
