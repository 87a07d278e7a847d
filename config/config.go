package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Built-in admin account and admin route gating
//   - database.go: Identity store backend and connection settings
//   - http.go: HTTP server and CORS configuration
//   - services.go: Downstream analysis service
//   - observability.go: Logging level and StatsD metrics
type AppConfig struct {
	// Authentication configuration
	Auth AuthConfig

	// Identity store configuration
	DB DBConfig `envPrefix:"DB_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Downstream analysis service
	Analysis AnalysisConfig `envPrefix:"ANALYSIS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.DB.Sanitize()
	c.Analysis.Sanitize()
	c.Observability.Sanitize()
}
