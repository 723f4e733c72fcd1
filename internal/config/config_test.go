package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tracker/internal/logging"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadClient_File(t *testing.T) {
	path := writeFile(t, `
server_url: https://tracker.example.com
request_timeout: 5s
log:
  level: debug
  format: json
`)

	cfg, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example.com", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, logging.LevelDebug, cfg.Log.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Log.Format)

	// Незаданные поля сохраняют значения по умолчанию
	assert.Equal(t, "tracker.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.ProbeInterval)
}

func TestLoadClient_MissingExplicitFile(t *testing.T) {
	_, err := LoadClient(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "server_url: [", "failed to parse"},
		{"empty url", `server_url: ""`, "server_url is required"},
		{"negative retries", "max_retries: -1", "max_retries must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadClient(writeFile(t, tt.content))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestLoadServer(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")

	_, err := LoadServer("")
	require.Error(t, err, "default config has no secret")

	t.Setenv(EnvJWTSecret, strings.Repeat("s", 32))
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, strings.Repeat("s", 32), cfg.JWTSecret)
	assert.Equal(t, 600, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)

	path := writeFile(t, "address: 127.0.0.1:9000\ntoken_ttl: 1h\njwt_secret: from-file\n")
	cfg, err = LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Address)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, strings.Repeat("s", 32), cfg.JWTSecret, "env overrides file")
}

func TestServer_ValidateRateLimit(t *testing.T) {
	cfg := DefaultServer()
	cfg.JWTSecret = strings.Repeat("s", 32)
	require.NoError(t, cfg.Validate())

	cfg.RateLimit = 0
	cfg.RateWindow = 0
	assert.NoError(t, cfg.Validate(), "zero disables the limiter")

	cfg.RateLimit = 10
	assert.ErrorContains(t, cfg.Validate(), "rate_window")

	cfg.RateLimit = -1
	assert.ErrorContains(t, cfg.Validate(), "rate_limit")
}
