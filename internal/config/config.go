package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures environment driven configuration values for the Eldrun service.
type Config struct {
	HTTPPort  int    `env:"ELDRUN_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN string `env:"ELDRUN_SQLITE_DSN" envDefault:"file:eldrun.db?_pragma=foreign_keys(1)"`

	// SessionSecret signs account tokens. There is no default; the process
	// refuses to start without one.
	SessionSecret string        `env:"ELDRUN_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"ELDRUN_SESSION_TTL" envDefault:"168h"`

	// StreamInterval is the push cadence of the ops snapshot stream.
	StreamInterval time.Duration `env:"ELDRUN_STREAM_INTERVAL" envDefault:"2500ms"`

	RateLimitWindow   time.Duration `env:"ELDRUN_RATE_WINDOW" envDefault:"1m"`
	RateLimitRequests int           `env:"ELDRUN_RATE_REQUESTS" envDefault:"240"`

	WelcomeBonus int64 `env:"ELDRUN_WELCOME_BONUS" envDefault:"500"`

	LogLevel string `env:"ELDRUN_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration values from the current process environment.
//
// Defaults apply to every optional field; required and malformed values are
// reported together so operators see the full set of problems at once.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	problems := make([]string, 0, 2)
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		problems = append(problems, "ELDRUN_SESSION_SECRET is required")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		problems = append(problems, "ELDRUN_HTTP_PORT must be between 1 and 65535")
	}
	if cfg.SessionTTL <= 0 {
		problems = append(problems, "ELDRUN_SESSION_TTL must be positive")
	}
	if cfg.StreamInterval <= 0 {
		problems = append(problems, "ELDRUN_STREAM_INTERVAL must be positive")
	}
	if cfg.RateLimitWindow <= 0 || cfg.RateLimitRequests <= 0 {
		problems = append(problems, "rate limit window and request count must be positive")
	}
	if cfg.WelcomeBonus < 0 {
		problems = append(problems, "ELDRUN_WELCOME_BONUS must not be negative")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}
