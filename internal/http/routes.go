package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/visualflow/visualflow-api/internal/errors"
)

// Gate is the auth surface routes need: token checks plus the self-service account operations.
type Gate interface {
	SessionGate
	AuthService
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     Gate
	Admin    AdminService
	Analysis AnalysisService
	CORS     CORSConfig
	// AdminUsersRequireAdmin puts GET /api/admin/users behind the admin check.
	// Off by default, which leaves the listing open.
	AdminUsersRequireAdmin bool
	Logger                 *slog.Logger // Optional
}

// NewRouter creates and configures the API router. Every route is wrapped in CORS.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/test", http.HandlerFunc(apiTestHandler))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth}, services.Auth)
		if services.Admin != nil {
			registerAdminRoutes(mux, &AdminHandlers{Svc: services.Admin}, services.Auth, services.AdminUsersRequireAdmin)
		}
		if services.Analysis != nil {
			registerAnalysisRoutes(mux, &AnalysisHandlers{Svc: services.Analysis}, services.Auth)
		}
	}

	mux.Handle("/", http.HandlerFunc(notFoundHandler))

	return CORS(services.CORS)(mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, gate SessionGate) {
	session := RequireSession(gate)
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("GET /api/auth/me", session(http.HandlerFunc(h.Me)))
	mux.Handle("PUT /api/auth/update", session(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/auth/delete", session(http.HandlerFunc(h.Delete)))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers, gate SessionGate, listRequiresAdmin bool) {
	admin := RequireAdmin(gate)

	var list http.Handler = http.HandlerFunc(h.ListUsers)
	if listRequiresAdmin {
		list = admin(list)
	}
	mux.Handle("GET /api/admin/users", list)
	mux.Handle("GET /api/admin/info", admin(http.HandlerFunc(h.Info)))
	mux.Handle("DELETE /api/admin/users/{id}", admin(http.HandlerFunc(h.DeleteUser)))
}

func registerAnalysisRoutes(mux *http.ServeMux, h *AnalysisHandlers, gate SessionGate) {
	mux.Handle("POST /api/ai/analyze", RequireSession(gate)(http.HandlerFunc(h.Analyze)))
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	WriteAppError(w, apperrors.NotFound("Not found"))
}
