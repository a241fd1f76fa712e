package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/covid-dashboard/internal/config"
	"github.com/i474232898/covid-dashboard/internal/covid"
	"github.com/i474232898/covid-dashboard/internal/covid/providers"
	"github.com/i474232898/covid-dashboard/internal/logging"
	"github.com/i474232898/covid-dashboard/internal/store"
)

var (
	debug  bool
	apiURL string

	rootCmd = &cobra.Command{
		Use:   "covid-dashboard",
		Short: "COVID-19 statistics dashboard",
		Long: `covid-dashboard fetches COVID-19 statistics from the disease.sh API and serves
aligned per-country timelines, a country list and a side-by-side comparison as JSON
and PNG charts.

Examples:
  covid-dashboard                           # Serve the dashboard on $PORT
  covid-dashboard timeline Norway           # Print the aligned Norway timeline
  covid-dashboard compare Norway Sweden     # Print a comparison of two countries`,
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "",
		"Override the upstream API base URL (default $COVID_API_URL or disease.sh)")

	rootCmd.AddCommand(serveCmd, timelineCmd, compareCmd)
}

// deps bundles what every command needs.
type deps struct {
	cfg     *config.AppConfig
	logger  *zap.Logger
	service *covid.Service
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := providers.NewDiseaseShProvider(httpClient, cfg.APIBaseURL, cfg.HistoryDays, providers.DefaultBreakerConfig())
	service := covid.NewService(source, store.NewMemoryStore(), logger, cfg.Selection())

	return &deps{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}, nil
}
