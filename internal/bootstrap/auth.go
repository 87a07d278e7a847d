package bootstrap

import (
	"log/slog"

	"github.com/visualflow/visualflow-api/config"
	"github.com/visualflow/visualflow-api/internal/adapters/registry"
)

// BuildCredentialRegistry creates the built-in principal registry from config.
// Without a usable admin email and password the registry is empty and admin routes are unreachable.
func BuildCredentialRegistry(cfg config.AuthConfig, logger *slog.Logger) *registry.Static {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.HasBuiltinAdmin() {
		logger.Warn("built-in admin not configured; admin routes will reject every request")
		return registry.NewStatic()
	}
	return registry.NewAdmin(cfg.BuiltinAdminEmail, cfg.BuiltinAdminPassword)
}

// warnAdminUserListing logs when GET /api/admin/users is reachable without a token.
func warnAdminUserListing(cfg config.AuthConfig, logger *slog.Logger) {
	if cfg.AdminUsersRequireAdmin {
		return
	}
	logger.Warn("admin user listing is open to unauthenticated callers",
		"route", "GET /api/admin/users",
		"fix", "set ADMIN_USERS_REQUIRE_ADMIN=true")
}
