package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
)

const (
	adminInfoMessage = "Confidential Admin Information 🔒"
	msgUserDeleted   = "User deleted successfully"
)

// AdminService is the operator surface the admin handlers depend on.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// AdminHandlers provides HTTP handlers for admin operations.
type AdminHandlers struct {
	Svc AdminService
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListUsers(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// Info handles GET /api/admin/info.
func (h *AdminHandlers) Info(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"msg": adminInfoMessage})
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteAppError(w, apperrors.BadRequestField("id", "Invalid user id"))
		return
	}
	if delErr := h.Svc.DeleteUser(r.Context(), id); delErr != nil {
		WriteAppError(w, delErr)
		return
	}
	WriteMessage(w, msgUserDeleted)
}
