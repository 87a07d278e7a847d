package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
)

const (
	msgRegistered     = "User registered successfully"
	msgProfileUpdated = "Profile updated successfully"
	msgAccountDeleted = "Account deleted successfully"
)

// AuthService is the account surface the auth handlers depend on.
type AuthService interface {
	Signup(ctx context.Context, creds model.Credentials) error
	Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	Me(ctx context.Context, sess domainauth.Session) (*model.UserProfile, error)
	UpdateSelf(ctx context.Context, sess domainauth.Session, req model.UpdateUserRequest) error
	DeleteSelf(ctx context.Context, sess domainauth.Session) error
}

// AuthHandlers provides HTTP handlers for signup, login and self-service account operations.
type AuthHandlers struct {
	Svc AuthService
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}
	if err := h.Svc.Signup(r.Context(), creds); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteMessage(w, msgRegistered)
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}
	res, err := h.Svc.Login(r.Context(), creds)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Me handles GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := requestSession(w, r)
	if !ok {
		return
	}
	profile, err := h.Svc.Me(r.Context(), *sess)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/auth/update.
func (h *AuthHandlers) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := requestSession(w, r)
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.UpdateSelf(r.Context(), *sess, req); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteMessage(w, msgProfileUpdated)
}

// Delete handles DELETE /api/auth/delete.
func (h *AuthHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requestSession(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteSelf(r.Context(), *sess); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteMessage(w, msgAccountDeleted)
}

// requestSession fetches the session placed by RequireSession, writing 401 when absent.
func requestSession(w http.ResponseWriter, r *http.Request) (*domainauth.Session, bool) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Unauthenticated("Missing or invalid token"))
		return nil, false
	}
	return sess, true
}
