package config

import "strings"

// AuthConfig groups authentication-related configuration.
type AuthConfig struct {
	// BuiltinAdminEmail and BuiltinAdminPassword define the single registry principal
	// that may reach admin-only routes.
	BuiltinAdminEmail    string `env:"BUILTIN_ADMIN_EMAIL"    envDefault:"admin@example.com"`
	BuiltinAdminPassword string `env:"BUILTIN_ADMIN_PASSWORD" envDefault:"admin123"`

	// AdminUsersRequireAdmin puts GET /api/admin/users behind the admin check.
	// The listing is open when false.
	AdminUsersRequireAdmin bool `env:"ADMIN_USERS_REQUIRE_ADMIN" envDefault:"false"`
}

// Sanitize trims the admin email. The password is used verbatim.
func (a *AuthConfig) Sanitize() {
	a.BuiltinAdminEmail = strings.TrimSpace(a.BuiltinAdminEmail)
}

// HasBuiltinAdmin reports whether a usable built-in admin is configured.
func (a *AuthConfig) HasBuiltinAdmin() bool {
	return a.BuiltinAdminEmail != "" && strings.TrimSpace(a.BuiltinAdminPassword) != ""
}
