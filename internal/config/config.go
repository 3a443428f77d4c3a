// Package config loads the server configuration.
//
// Sources, lowest to highest precedence: struct defaults, coderesources.hcl
// files, CR_* environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

// EnvPrefix is prepended to every environment variable, e.g. CR_PORT.
const EnvPrefix = "CR"

// Files are searched in order; missing files are skipped.
var Files = []string{
	"./coderesources.hcl",
	"./coderesources.local.hcl",
	"$HOME/.config/code-resources/config.hcl",
}

type Config struct {
	Port     int    `hcl:"port" env:"PORT" flag:"port" default:"8080" usage:"HTTP listen port"`
	DBPath   string `hcl:"db_path" env:"DB_PATH" flag:"db-path" default:"data/resources.db" usage:"SQLite database file"`
	LogLevel string `hcl:"log_level" env:"LOG_LEVEL" flag:"log-level" default:"info" usage:"debug, info, warn or error"`

	// Auth. An empty JWTSecret disables sign-in; GitHub login additionally
	// needs the client id and secret.
	JWTSecret          string `hcl:"jwt_secret" env:"JWT_SECRET" flag:"jwt-secret"`
	GitHubClientID     string `hcl:"github_client_id" env:"GITHUB_CLIENT_ID" flag:"github-client-id"`
	GitHubClientSecret string `hcl:"github_client_secret" env:"GITHUB_CLIENT_SECRET" flag:"github-client-secret"`
	GitHubCallbackURL  string `hcl:"github_callback_url" env:"GITHUB_CALLBACK_URL" flag:"github-callback-url"`
	// CookieSecure marks session cookies Secure; enable behind HTTPS.
	CookieSecure bool `hcl:"cookie_secure" env:"COOKIE_SECURE" flag:"cookie-secure" default:"false"`

	CORSOrigins []string `hcl:"cors_origins" env:"CORS_ORIGINS" flag:"cors-origins" default:"http://localhost:5173"`

	// Catalog and search.
	SearchDebounce  time.Duration `hcl:"search_debounce" env:"SEARCH_DEBOUNCE" flag:"search-debounce" default:"300ms"`
	RefreshSchedule string        `hcl:"refresh_schedule" env:"REFRESH_SCHEDULE" flag:"refresh-schedule" default:"@every 5m"`

	// Analytics.
	PruneSchedule      string        `hcl:"prune_schedule" env:"PRUNE_SCHEDULE" flag:"prune-schedule" default:"0 30 3 * * *"`
	AnalyticsRetention time.Duration `hcl:"analytics_retention" env:"ANALYTICS_RETENTION" flag:"analytics-retention" default:"2160h"`

	// Form throttling (newsletter, contact, sign-in), per client IP.
	RateLimitRPS   float64 `hcl:"rate_limit_rps" env:"RATE_LIMIT_RPS" flag:"rate-limit-rps" default:"0.2"`
	RateLimitBurst int     `hcl:"rate_limit_burst" env:"RATE_LIMIT_BURST" flag:"rate-limit-burst" default:"5"`

	// Playground runs, per client IP. Tighter than forms: each run starts a sandbox.
	ExecuteRateLimitRPS   float64 `hcl:"execute_rate_limit_rps" env:"EXECUTE_RATE_LIMIT_RPS" flag:"execute-rate-limit-rps" default:"0.1"`
	ExecuteRateLimitBurst int     `hcl:"execute_rate_limit_burst" env:"EXECUTE_RATE_LIMIT_BURST" flag:"execute-rate-limit-burst" default:"3"`

	// Playground.
	ExecutorEnabled  bool          `hcl:"executor_enabled" env:"EXECUTOR_ENABLED" flag:"executor-enabled" default:"true"`
	ExecutorTimeout  time.Duration `hcl:"executor_timeout" env:"EXECUTOR_TIMEOUT" flag:"executor-timeout" default:"5s"`
	ExecutorPoolSize int           `hcl:"executor_pool_size" env:"EXECUTOR_POOL_SIZE" flag:"executor-pool-size" default:"2"`
}

// Load reads the configuration. args are the command-line arguments without
// the program name; nil skips flag parsing entirely (used by tests).
func Load(args []string) (Config, error) {
	var cfg Config

	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: EnvPrefix,
		SkipFlags: args == nil,
		Args:      args,
		Files:     Files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("config: loading: %w", err)
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values a type alone cannot express.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("config: db_path is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("config: jwt_secret must be at least 16 characters"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("config: rate_limit_rps and rate_limit_burst must be positive"))
	}
	if c.ExecuteRateLimitRPS <= 0 || c.ExecuteRateLimitBurst <= 0 {
		errs = append(errs, errors.New("config: execute_rate_limit_rps and execute_rate_limit_burst must be positive"))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("config: search_debounce must not be negative"))
	}

	return errors.Join(errs...)
}

// AuthEnabled reports whether token-based sign-in is configured.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// GitHubEnabled reports whether GitHub login can be offered.
func (c Config) GitHubEnabled() bool {
	return c.AuthEnabled() && c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
