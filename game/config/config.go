package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/match"
)

// Config is the server's runtime configuration, read from environment
// variables with sensible defaults for local development.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `env:"DOTS_ADDR" envDefault:":8080"`

	// UsersFile is the path of the JSON credential store.
	UsersFile string `env:"DOTS_USERS_FILE" envDefault:"users.json"`

	// GridRows and GridColumns size the board, counted in boxes.
	GridRows    int `env:"DOTS_GRID_ROWS" envDefault:"5"`
	GridColumns int `env:"DOTS_GRID_COLUMNS" envDefault:"5"`

	// SessionTTL is how long a session lives after creation. Activity
	// does not extend it.
	SessionTTL time.Duration `env:"DOTS_SESSION_TTL" envDefault:"1h"`

	// MatchIdleTimeout expires a match with no move for this long.
	MatchIdleTimeout time.Duration `env:"DOTS_MATCH_IDLE_TIMEOUT" envDefault:"10m"`

	// MatchMaxLifetime expires a match this long after creation or the
	// latest reset, regardless of activity.
	MatchMaxLifetime time.Duration `env:"DOTS_MATCH_MAX_LIFETIME" envDefault:"2h"`

	// MatchCleanupDelay expires a finished match this long after the
	// winning move.
	MatchCleanupDelay time.Duration `env:"DOTS_MATCH_CLEANUP_DELAY" envDefault:"5m"`

	// EnableMCP mounts the MCP endpoint on the HTTP server.
	EnableMCP bool `env:"DOTS_ENABLE_MCP" envDefault:"true"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"DOTS_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GridRows < 1 || c.GridColumns < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.GridRows, c.GridColumns)
	}
	for name, d := range map[string]time.Duration{
		"DOTS_SESSION_TTL":         c.SessionTTL,
		"DOTS_MATCH_IDLE_TIMEOUT":  c.MatchIdleTimeout,
		"DOTS_MATCH_MAX_LIFETIME":  c.MatchMaxLifetime,
		"DOTS_MATCH_CLEANUP_DELAY": c.MatchCleanupDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Grid returns the configured board size.
func (c Config) Grid() engine.Grid {
	return engine.Grid{Rows: c.GridRows, Columns: c.GridColumns}
}

// Timeouts returns the configured match timer durations.
func (c Config) Timeouts() match.Timeouts {
	return match.Timeouts{
		Idle:    c.MatchIdleTimeout,
		Max:     c.MatchMaxLifetime,
		Cleanup: c.MatchCleanupDelay,
	}
}
