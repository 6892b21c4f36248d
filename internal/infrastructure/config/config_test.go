package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8787", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:8787", cfg.Addr())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Terminal config
	assert.Equal(t, "/bin/zsh", cfg.Terminal.DefaultShell)
	assert.Equal(t, 80, cfg.Terminal.DefaultCols)
	assert.Equal(t, 24, cfg.Terminal.DefaultRows)
	assert.Equal(t, 4096, cfg.Terminal.ReadChunk)

	assert.Empty(t, cfg.Sandbox.ExtraDeny)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "0.0.0.0",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"DEFAULT_SHELL":      "/bin/bash",
		"DEFAULT_COLS":       "120",
		"DEFAULT_ROWS":       "40",
		"SANDBOX_EXTRA_DENY": ".password-store,.local/share/keyrings",
		"CORS_ORIGINS":       "http://localhost:5173",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "/bin/bash", cfg.Terminal.DefaultShell)
	assert.Equal(t, 120, cfg.Terminal.DefaultCols)
	assert.Equal(t, 40, cfg.Terminal.DefaultRows)
	assert.Equal(t, []string{".password-store", ".local/share/keyrings"}, cfg.Sandbox.ExtraDeny)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.Origins)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 4096, cfg.Terminal.ReadChunk)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forkspace.yaml")
	content := `server:
  port: "9100"
terminal:
  default_shell: /bin/bash
  default_cols: 132
sandbox:
  extra_deny:
    - .password-store
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/bin/bash", cfg.Terminal.DefaultShell)
	assert.Equal(t, 132, cfg.Terminal.DefaultCols)
	assert.Equal(t, 24, cfg.Terminal.DefaultRows)
	assert.Equal(t, []string{".password-store"}, cfg.Sandbox.ExtraDeny)
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forkspace.toml")
	content := `[server]
host = "0.0.0.0"

[logging]
level = "debug"

[rate_limit]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8787", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forkspace.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9100\"\n"), 0o644))
	t.Setenv("PORT", "9200")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9200", cfg.Server.Port)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "settings.ini")
		require.NoError(t, os.WriteFile(path, []byte("port=1"), 0o644))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config file extension")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }},
		{"zero columns", func(c *Config) { c.Terminal.DefaultCols = 0 }},
		{"huge rows", func(c *Config) { c.Terminal.DefaultRows = 5000 }},
		{"zero read chunk", func(c *Config) { c.Terminal.ReadChunk = 0 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadReadsPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forkspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9100\"\n"), 0644))
	t.Setenv(PathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
}
