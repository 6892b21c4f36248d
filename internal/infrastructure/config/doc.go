// Package config provides 12-factor configuration management for the Forkspace backend.
//
// Values are layered in order: built-in defaults, an optional YAML or TOML
// settings file (FORKSPACE_CONFIG or the --config flag), then environment
// variables. CLI flags override all of them.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Terminal: Default shell, PTY size and read chunk
//   - Sandbox: Extra denylisted home subdirectories
//   - CORS: Allowed front end origins
//
// Example Usage:
//
//	cfg, err := config.LoadFile(path)
//	fmt.Printf("Server running on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - DEFAULT_SHELL, DEFAULT_COLS, DEFAULT_ROWS, READ_CHUNK
//   - SANDBOX_EXTRA_DENY, CORS_ORIGINS (comma separated)
package config
