package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
	"github.com/visualflow/visualflow-api/internal/observability/metrics"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
	"github.com/visualflow/visualflow-api/internal/ports"
)

// aiErrorPrefix prefixes transport failures from the analysis service.
const aiErrorPrefix = "AI service error: "

// AnalysisServiceOptions groups dependencies for AnalysisService.
type AnalysisServiceOptions struct {
	Client    ports.AnalysisClient // Required
	Telemetry Telemetry            // Optional
}

// AnalysisService forwards documents to the downstream analysis endpoint.
type AnalysisService struct {
	client  ports.AnalysisClient
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// NewAnalysisService constructs a new AnalysisService.
func NewAnalysisService(opts AnalysisServiceOptions) *AnalysisService {
	if opts.Client == nil {
		panic("AnalysisClient is required")
	}
	return &AnalysisService{
		client:  opts.Client,
		logger:  opts.Telemetry.logger("analysis_service"),
		metrics: opts.Telemetry.Metrics,
		now:     time.Now,
	}
}

// Proxy sends body downstream and returns the response verbatim, whatever its status.
// Only a transport failure is an error.
func (s *AnalysisService) Proxy(ctx context.Context, body []byte) (*model.AnalysisResponse, error) {
	start := s.now()
	resp, err := s.client.Analyze(ctx, body)
	call := metrics.ProxyCall{Duration: s.now().Sub(start), Err: err}
	if resp != nil {
		call.Status = resp.StatusCode
	}
	metrics.EmitProxyCall(s.metrics, call)

	if err != nil {
		s.logger.ErrorContext(ctx, "analysis proxy failed", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, aiErrorPrefix+err.Error())
	}
	s.logger.DebugContext(ctx, "analysis proxied", "status", resp.StatusCode, "bytes", len(resp.Body))
	return resp, nil
}
