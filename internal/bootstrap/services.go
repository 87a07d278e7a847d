package bootstrap

import (
	"errors"
	"log/slog"

	"github.com/visualflow/visualflow-api/config"
	"github.com/visualflow/visualflow-api/internal/adapters/sessiontable"
	"github.com/visualflow/visualflow-api/internal/core"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
	"github.com/visualflow/visualflow-api/internal/ports"
	"github.com/visualflow/visualflow-api/internal/service"
)

// ServiceContainer holds all initialized services.
type ServiceContainer struct {
	Auth     *service.AuthService
	Admin    *service.AdminService
	Analysis *service.AnalysisService
	Metrics  *statsd.Client
}

// ServiceDeps contains dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Users  core.UserRepository
	Logger *slog.Logger

	// Optional overrides, mainly for tests.
	Sessions       ports.SessionStore
	AnalysisClient ports.AnalysisClient
}

// NewServices creates and initializes all services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	if deps.Users == nil {
		return nil, errors.New("user repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics, err := BuildMetricsClient(cfg.Observability.Metrics, logger)
	if err != nil {
		return nil, err
	}

	analysisClient := deps.AnalysisClient
	if analysisClient == nil {
		client, buildErr := BuildAnalysisClient(cfg.Analysis)
		if buildErr != nil {
			return nil, errors.Join(buildErr, metrics.Close())
		}
		analysisClient = client
	}

	sessions := deps.Sessions
	if sessions == nil {
		sessions = sessiontable.New(sessiontable.Options{})
	}

	telemetry := service.Telemetry{Logger: logger, Metrics: metrics}
	return &ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Users:     deps.Users,
			Sessions:  sessions,
			Registry:  BuildCredentialRegistry(cfg.Auth, logger),
			Telemetry: telemetry,
		}),
		Admin: service.NewAdminService(service.AdminServiceOptions{
			Users:     deps.Users,
			Telemetry: telemetry,
		}),
		Analysis: service.NewAnalysisService(service.AnalysisServiceOptions{
			Client:    analysisClient,
			Telemetry: telemetry,
		}),
		Metrics: metrics,
	}, nil
}

// Close releases resources held by the container.
func (c *ServiceContainer) Close() error {
	if c == nil {
		return nil
	}
	return c.Metrics.Close()
}
