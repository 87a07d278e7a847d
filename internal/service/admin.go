package service

import (
	"context"
	"log/slog"

	"github.com/visualflow/visualflow-api/internal/core"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
	"github.com/visualflow/visualflow-api/internal/observability/metrics"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
)

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	Users     core.UserRepository // Required
	Telemetry Telemetry           // Optional
}

// AdminService exposes operator views over the identity store.
type AdminService struct {
	users   core.UserRepository
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewAdminService constructs a new AdminService.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	if opts.Users == nil {
		panic("UserRepository is required")
	}
	return &AdminService{
		users:   opts.Users,
		logger:  opts.Telemetry.logger("admin_service"),
		metrics: opts.Telemetry.Metrics,
	}
}

// ListUsers returns every stored principal ordered by ID.
func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list users failed", "error", err)
		return nil, toAppError(err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// DeleteUser removes a stored principal by ID. Sessions already issued to it are left in place.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) (err error) {
	defer func() {
		metrics.EmitAuthEvent(s.metrics, metrics.AuthEvent{Name: metrics.EventUserDeleted, Err: err})
	}()

	if id <= 0 {
		return apperrors.BadRequestField("id", "Invalid user id")
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "delete user failed", "user_id", id, "error", err)
		return toAppError(err)
	}
	if !deleted {
		return apperrors.NotFound(MsgUserNotFound)
	}
	s.logger.InfoContext(ctx, "user deleted by admin", "user_id", id)
	return nil
}
