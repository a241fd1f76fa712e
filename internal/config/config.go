package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/covid-dashboard/internal/common"
	"github.com/i474232898/covid-dashboard/internal/covid"
	"github.com/i474232898/covid-dashboard/internal/covid/providers"
)

// AppConfig holds the settings read from the environment.
type AppConfig struct {
	APIBaseURL  string
	HTTPTimeout time.Duration

	// HistoryDays is passed to the historical endpoint as lastdays ("all" or a day count).
	HistoryDays string

	// Initial selection.
	DefaultCountry   string
	CompareCountries []string

	// RefreshInterval controls how often the displayed data is refetched.
	RefreshInterval time.Duration

	ChartWidth  int
	ChartHeight int

	LogLevel string
	Port     string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	// Missing .env is the normal case in containers.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.APIBaseURL = getenvDefault("COVID_API_URL", providers.DefaultBaseURL)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	days := strings.ToLower(getenvDefault("HISTORY_DAYS", "30"))
	if days != "all" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid HISTORY_DAYS %q: want a positive number or \"all\"", days)
		}
	}
	cfg.HistoryDays = days

	cfg.DefaultCountry = getenvDefault("DEFAULT_COUNTRY", covid.DefaultCountry)
	cfg.CompareCountries = common.SplitList(getenvDefault("COMPARE_COUNTRIES", "Norway,Sweden,Denmark,Finland"))

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	if cfg.ChartWidth, err = getenvPositiveInt("CHART_WIDTH", 1024); err != nil {
		return nil, err
	}
	if cfg.ChartHeight, err = getenvPositiveInt("CHART_HEIGHT", 512); err != nil {
		return nil, err
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// Selection returns the initial dashboard selection described by the config.
func (c *AppConfig) Selection() covid.Selection {
	return covid.Selection{
		Country: c.DefaultCountry,
		Compare: append([]string(nil), c.CompareCountries...),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvPositiveInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive number", key, v)
	}
	return n, nil
}
