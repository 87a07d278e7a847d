package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/visualflow/visualflow-api/internal/core"
	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
	"github.com/visualflow/visualflow-api/internal/observability/metrics"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
	"github.com/visualflow/visualflow-api/internal/ports"
)

// Client-facing messages.
const (
	MsgCredentialsRequired = "Email and password required"
	MsgUserExists          = "User already exists"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgInvalidToken        = "Missing or invalid token"
	MsgUserNotFound        = "User not found"
	MsgAdminOnly           = "Admin only"
	MsgInternal            = "Internal server error"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users     core.UserRepository      // Required
	Sessions  ports.SessionStore       // Required
	Registry  ports.CredentialRegistry // Required
	Telemetry Telemetry                // Optional
}

// Telemetry bundles the optional logging and metrics sinks shared by services.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

func (t Telemetry) logger(component string) *slog.Logger {
	l := t.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

// sessionCounter is implemented by session stores that can report their size.
type sessionCounter interface {
	Len() int
}

// AuthService implements signup, login and self-service account operations, and the
// session and admin checks used to guard routes.
type AuthService struct {
	users    core.UserRepository
	sessions ports.SessionStore
	registry ports.CredentialRegistry
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Users == nil {
		panic("UserRepository is required")
	}
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}
	if opts.Registry == nil {
		panic("CredentialRegistry is required")
	}
	return &AuthService{
		users:    opts.Users,
		sessions: opts.Sessions,
		registry: opts.Registry,
		logger:   opts.Telemetry.logger("auth_service"),
		metrics:  opts.Telemetry.Metrics,
	}
}

// Signup creates a stored principal with role USER.
func (s *AuthService) Signup(ctx context.Context, creds model.Credentials) (err error) {
	defer func() {
		metrics.EmitAuthEvent(s.metrics, metrics.AuthEvent{Name: metrics.EventSignup, Err: err})
	}()

	if creds.Validate() != nil {
		return apperrors.BadRequest(MsgCredentialsRequired)
	}

	_, err = s.users.GetByEmail(ctx, creds.Email)
	switch {
	case err == nil:
		return apperrors.Conflict(MsgUserExists)
	case !errors.Is(err, model.ErrUserNotFound):
		return s.storeErr(ctx, "signup lookup", err)
	}

	user, err := s.users.Create(ctx, &model.CreateUserRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Role:     domainauth.RoleUser,
	})
	if err != nil {
		if errors.Is(err, model.ErrUserEmailExists) {
			return apperrors.Conflict(MsgUserExists)
		}
		return s.storeErr(ctx, "signup create", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return nil
}

// Login checks the credential registry and then the identity store, and issues a token on match.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (res *model.LoginResult, err error) {
	var kind domainauth.PrincipalKind
	defer func() {
		metrics.EmitAuthEvent(s.metrics, metrics.AuthEvent{Name: metrics.EventLogin, Principal: string(kind), Err: err})
	}()

	if creds.Validate() != nil {
		return nil, apperrors.BadRequest(MsgCredentialsRequired)
	}

	ref, role, err := s.matchPrincipal(ctx, creds)
	if err != nil {
		return nil, err
	}
	kind = ref.Kind

	token, err := s.sessions.Issue(ctx, ref)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
	}
	s.reportSessions()

	s.logger.InfoContext(ctx, "login succeeded", "principal", string(ref.Kind), "user_id", ref.UserID)
	return &model.LoginResult{Token: token, Role: role}, nil
}

func (s *AuthService) matchPrincipal(
	ctx context.Context,
	creds model.Credentials,
) (domainauth.PrincipalRef, domainauth.Role, error) {
	if p, ok := s.registry.Lookup(creds.Email); ok && p.Password == creds.Password {
		return domainauth.BuiltinRef(p.Email), p.Role, nil
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "login rejected", "reason", "unknown_email")
			return domainauth.PrincipalRef{}, "", apperrors.Unauthorized(MsgInvalidCredentials)
		}
		return domainauth.PrincipalRef{}, "", s.storeErr(ctx, "login lookup", err)
	}
	if user.Password != creds.Password {
		s.logger.InfoContext(ctx, "login rejected", "reason", "password_mismatch", "user_id", user.ID)
		return domainauth.PrincipalRef{}, "", apperrors.Unauthorized(MsgInvalidCredentials)
	}
	return domainauth.StoredRef(user.ID, user.Email), user.Role, nil
}

// Authenticate resolves token to a session. A blank or unknown token is Unauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domainauth.Session, error) {
	if model.IsBlank(token) {
		return domainauth.Session{}, apperrors.Unauthenticated(MsgInvalidToken)
	}
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return domainauth.Session{}, apperrors.Unauthenticated(MsgInvalidToken)
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
	}
	return sess, nil
}

// AuthorizeAdmin admits only sessions issued to a built-in principal whose registry role is ADMIN.
// Stored users never pass, whatever role they carry.
func (s *AuthService) AuthorizeAdmin(ctx context.Context, token string) (domainauth.Session, error) {
	if model.IsBlank(token) {
		return domainauth.Session{}, apperrors.Forbidden(MsgAdminOnly)
	}
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return domainauth.Session{}, apperrors.Forbidden(MsgAdminOnly)
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
	}
	if !sess.IsBuiltin() {
		return domainauth.Session{}, apperrors.Forbidden(MsgAdminOnly)
	}
	p, ok := s.registry.Lookup(sess.Email)
	if !ok || p.Role != domainauth.RoleAdmin {
		return domainauth.Session{}, apperrors.Forbidden(MsgAdminOnly)
	}
	return sess, nil
}

// Me returns the profile of the stored principal behind sess.
func (s *AuthService) Me(ctx context.Context, sess domainauth.Session) (*model.UserProfile, error) {
	user, err := s.storedUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{Email: user.Email, Role: user.Role}, nil
}

// UpdateSelf applies the non-blank fields of req to the caller's stored record and keeps
// the presenting token bound to the new email.
func (s *AuthService) UpdateSelf(ctx context.Context, sess domainauth.Session, req model.UpdateUserRequest) error {
	current, err := s.storedUser(ctx, sess)
	if err != nil {
		return err
	}

	req.Normalize()
	if !req.HasUpdates() {
		return nil
	}

	updated, err := s.users.Update(ctx, current.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			return apperrors.NotFound(MsgUserNotFound)
		case errors.Is(err, model.ErrUserEmailExists):
			return apperrors.Conflict(MsgUserExists)
		default:
			return s.storeErr(ctx, "update self", err)
		}
	}

	if updated.Email != current.Email {
		if rebindErr := s.sessions.Rebind(ctx, sess.Token, updated.Email); rebindErr != nil {
			return apperrors.Wrap(rebindErr, apperrors.ErrCodeInternal, MsgInternal)
		}
	}
	s.logger.InfoContext(ctx, "profile updated", "user_id", current.ID, "email_changed", updated.Email != current.Email)
	return nil
}

// DeleteSelf removes the caller's stored record and revokes the presenting token.
// Other tokens issued to the same principal stay in the table.
func (s *AuthService) DeleteSelf(ctx context.Context, sess domainauth.Session) (err error) {
	defer func() {
		metrics.EmitAuthEvent(s.metrics, metrics.AuthEvent{Name: metrics.EventAccountDeleted, Err: err})
	}()

	user, err := s.storedUser(ctx, sess)
	if err != nil {
		return err
	}

	deleted, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		return s.storeErr(ctx, "delete self", err)
	}
	if !deleted {
		return apperrors.NotFound(MsgUserNotFound)
	}

	if err = s.sessions.Revoke(ctx, sess.Token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
	}
	s.reportSessions()

	s.logger.InfoContext(ctx, "account deleted", "user_id", user.ID)
	return nil
}

// storedUser loads the persisted record for a stored session. Built-in principals have none.
func (s *AuthService) storedUser(ctx context.Context, sess domainauth.Session) (*model.User, error) {
	if sess.Kind != domainauth.PrincipalStored {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, s.storeErr(ctx, "load user", err)
	}
	return user, nil
}

func (s *AuthService) reportSessions() {
	if c, ok := s.sessions.(sessionCounter); ok {
		metrics.EmitActiveSessions(s.metrics, c.Len())
	}
}

// storeErr logs an identity store failure and converts it to an AppError.
func (s *AuthService) storeErr(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "identity store failure", "op", op, "error", err)
	return toAppError(err)
}

func toAppError(err error) error {
	mapped := apperrors.MapDBError(err)
	if apperrors.GetCode(mapped) != "" {
		return mapped
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
}
