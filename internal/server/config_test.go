package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, *NewConfig(), *cfg)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("ALLOWED_ORIGINS", "https://chat.example.com, http://localhost:3000")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "20")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, []string{"https://chat.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"negative size": {"MAX_MESSAGE_SIZE", "-1"},
		"zero burst":    {"RATE_LIMIT_BURST", "0"},
		"not a number":  {"RATE_LIMIT_BURST", "many"},
		"bad duration":  {"RATE_LIMIT_REFILL_INTERVAL", "soon"},
		"unknown level": {"LOG_LEVEL", "verbose"},
		"zero shutdown": {"SHUTDOWN_TIMEOUT", "0s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=:7070\nLOG_LEVEL=warn\n"), 0o600))
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { _ = os.Unsetenv("SERVER_PORT") })

	cfg, err := LoadConfig(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Port)
	assert.Equal(t, "error", cfg.LogLevel, "process environment wins over the file")
}

func TestSetConfigSanitizes(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	SetConfig(&Config{
		AllowedOrigins: []string{" HTTP://Example.COM ", "not-a-url", ""},
	})
	cfg := CurrentConfig()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, []string{"http://example.com"}, cfg.AllowedOrigins)
}

func TestCurrentConfigReturnsCopy(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(nil)

	cfg := CurrentConfig()
	cfg.AllowedOrigins[0] = "http://evil.example"
	assert.Equal(t, []string{"http://localhost:8080"}, CurrentConfig().AllowedOrigins)
}

func TestPropertySanitizedConfigIsUsable(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	rapid.Check(t, func(t *rapid.T) {
		SetConfig(&Config{
			MaxMessageSize: rapid.Int64Range(-10, 10).Draw(t, "size"),
			RateLimit: RateLimitConfig{
				Burst:          rapid.IntRange(-10, 10).Draw(t, "burst"),
				RefillInterval: time.Duration(rapid.Int64Range(-10, 10).Draw(t, "interval")),
			},
		})
		cfg := CurrentConfig()
		if cfg.MaxMessageSize <= 0 || cfg.RateLimit.Burst <= 0 || cfg.RateLimit.RefillInterval <= 0 {
			t.Fatalf("sanitized config still invalid: %+v", cfg)
		}
		if cfg.Port == "" || cfg.ShutdownTimeout <= 0 {
			t.Fatalf("missing defaults: %+v", cfg)
		}
	})
}
