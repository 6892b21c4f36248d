package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

// PathEnv names the environment variable that points at an optional
// settings file.
const PathEnv = "FORKSPACE_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Terminal  TerminalConfig  `yaml:"terminal" toml:"terminal"`
	Sandbox   SandboxConfig   `yaml:"sandbox" toml:"sandbox"`
	CORS      CORSConfig      `yaml:"cors" toml:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" yaml:"host" toml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// TerminalConfig holds PTY session defaults.
type TerminalConfig struct {
	DefaultShell string `envconfig:"DEFAULT_SHELL" yaml:"default_shell" toml:"default_shell"`
	DefaultCols  int    `envconfig:"DEFAULT_COLS" yaml:"default_cols" toml:"default_cols"`
	DefaultRows  int    `envconfig:"DEFAULT_ROWS" yaml:"default_rows" toml:"default_rows"`
	ReadChunk    int    `envconfig:"READ_CHUNK" yaml:"read_chunk" toml:"read_chunk"`
}

// SandboxConfig holds path sandbox configuration.
type SandboxConfig struct {
	// ExtraDeny lists additional home-relative directories to refuse.
	ExtraDeny []string `envconfig:"SANDBOX_EXTRA_DENY" yaml:"extra_deny" toml:"extra_deny"`
}

// CORSConfig holds cross-origin configuration for the front end.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" yaml:"origins" toml:"origins"`
}

// Load loads configuration from the settings file named by FORKSPACE_CONFIG
// (if any) and then from environment variables.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(PathEnv))
}

// LoadFile layers configuration: defaults, then the settings file at path
// (skipped when path is empty), then environment variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Fields carry no envconfig defaults so unset variables leave file values alone.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8787",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Terminal: TerminalConfig{
			DefaultShell: "/bin/zsh",
			DefaultCols:  80,
			DefaultRows:  24,
			ReadChunk:    4096,
		},
		CORS: CORSConfig{
			Origins: []string{
				"http://localhost:1420",
				"tauri://localhost",
			},
		},
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}
	if c.Terminal.DefaultCols < 1 || c.Terminal.DefaultCols > 4096 {
		return fmt.Errorf("invalid default terminal columns: %d", c.Terminal.DefaultCols)
	}
	if c.Terminal.DefaultRows < 1 || c.Terminal.DefaultRows > 4096 {
		return fmt.Errorf("invalid default terminal rows: %d", c.Terminal.DefaultRows)
	}
	if c.Terminal.ReadChunk < 1 {
		return fmt.Errorf("invalid terminal read chunk: %d", c.Terminal.ReadChunk)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond < 1 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit requires positive rps and burst")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
