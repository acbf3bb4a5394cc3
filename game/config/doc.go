// Package config provides runtime configuration for the game server.
//
// The config package handles:
//   - Reading settings from environment variables
//   - Defaults suitable for local development
//   - Validation of grid dimensions and timer durations
//
// Configuration Variables:
//
//   - DOTS_ADDR: HTTP listen address (default :8080)
//   - DOTS_USERS_FILE: path of the JSON credential store
//   - DOTS_GRID_ROWS, DOTS_GRID_COLUMNS: board size in boxes
//   - DOTS_SESSION_TTL: flat session lifetime
//   - DOTS_MATCH_IDLE_TIMEOUT: expiry after the last move
//   - DOTS_MATCH_MAX_LIFETIME: expiry after creation or reset
//   - DOTS_MATCH_CLEANUP_DELAY: expiry after the winning move
//   - DOTS_ENABLE_MCP: mount the MCP endpoint
//   - DOTS_LOG_LEVEL: debug, info, warn, or error
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	registry := match.NewRegistry(sessions, cfg.Grid(), cfg.Timeouts(), logger)
//
// A .env file in the working directory is honored when the binary is
// started through the CLI, which loads it before parsing.
package config
