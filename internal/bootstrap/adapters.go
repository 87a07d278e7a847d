package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/visualflow/visualflow-api/config"
	"github.com/visualflow/visualflow-api/internal/adapters/analysis"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
)

// BuildMetricsClient creates the StatsD client. A disabled config yields a client that drops everything.
func BuildMetricsClient(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}
	if logger != nil && client.Enabled() {
		logger.Info("statsd metrics enabled", "address", cfg.StatsdAddress)
	}
	return client, nil
}

// BuildAnalysisClient creates the downstream analysis client.
func BuildAnalysisClient(cfg config.AnalysisConfig) (*analysis.Client, error) {
	client, err := analysis.NewClient(analysis.Config{URL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("create analysis client: %w", err)
	}
	return client, nil
}
