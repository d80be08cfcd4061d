// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// GamesCSVURL and CategoriesCSVURL point at the published spreadsheet
	// tables. Leaving either empty serves the bundled snapshot.
	GamesCSVURL      string `koanf:"games_csv_url"`
	CategoriesCSVURL string `koanf:"categories_csv_url"`

	// FetchRatePerSec paces requests to the spreadsheet host.
	FetchRatePerSec float64 `koanf:"fetch_rate_per_sec"`

	// MaxSessions bounds the in-memory browsing session registry.
	MaxSessions int `koanf:"max_sessions"`

	// AllowedOrigins lists CORS origins for browser clients.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		FetchRatePerSec: 5,
		MaxSessions:     10_000,
		AllowedOrigins:  []string{"http://localhost:*"},
	}
}
