package config

import (
	"strings"
	"time"
)

// DefaultAnalysisURL is the analysis endpoint used when ANALYSIS_URL is blank.
const DefaultAnalysisURL = "http://localhost:8000/analyze"

// AnalysisConfig describes the downstream resume analysis service.
type AnalysisConfig struct {
	URL string `env:"URL" envDefault:"http://localhost:8000/analyze"`
	// Timeout bounds each proxied call. Zero disables the client-side timeout.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

// Sanitize applies defaults to the analysis configuration.
func (c *AnalysisConfig) Sanitize() {
	if c.URL = strings.TrimSpace(c.URL); c.URL == "" {
		c.URL = DefaultAnalysisURL
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
}
