package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_SOURCE_KEY", "from-env")
	path := writeConfig(t, `
source:
  base_url: http://localhost:8080/api
  fallback_url: http://mirror:8080/api
  api_key: ${TEST_SOURCE_KEY}
  timeout_seconds: 3
  rate_per_second: 5
  burst: 2
redis:
  address: localhost:6379
search:
  max_results: 7
monitoring:
  pushgateway_url: http://localhost:9091
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.Source.BaseURL)
	assert.Equal(t, "http://mirror:8080/api", cfg.Source.FallbackURL)
	assert.Equal(t, "from-env", cfg.Source.APIKey)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout())
	assert.Equal(t, 2, cfg.SourceMaxRetries())
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, 7, cfg.SearchMaxResults())
	assert.Equal(t, "studyspaces_cli", cfg.MonitoringJob())
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
}

func TestSourceMaxRetries(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected int
	}{
		{"unset", "source:\n  base_url: http://localhost\n", 2},
		{"disabled", "source:\n  max_retries: 0\n", 0},
		{"explicit", "source:\n  max_retries: 5\n", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.SourceMaxRetries())
		})
	}
}

func TestLoad_EnvPath(t *testing.T) {
	path := writeConfig(t, "search:\n  max_results: 3\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SearchMaxResults())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_DefaultsWhenDefaultPathMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout())
	assert.Zero(t, cfg.CacheTTL())
	assert.Equal(t, 10, cfg.SearchMaxResults())
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())

	open, closeTag := cfg.HighlightMarkers()
	assert.Equal(t, "<mark>", open)
	assert.Equal(t, "</mark>", closeTag)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "")
	require.NoError(t, os.WriteFile(".env", []byte("STUDYSPACES_TEST_DOTENV=http://dotenv.local\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STUDYSPACES_TEST_DOTENV") })

	path := writeConfig(t, "source:\n  base_url: ${STUDYSPACES_TEST_DOTENV}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.local", cfg.Source.BaseURL)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"negative timeout", "source:\n  timeout_seconds: -1\n", "timeout_seconds"},
		{"negative rate", "source:\n  rate_per_second: -1\n", "rate_per_second"},
		{"negative retries", "source:\n  max_retries: -1\n", "max_retries"},
		{"negative ttl", "redis:\n  cache_ttl_seconds: -5\n", "cache_ttl_seconds"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad yaml", "source: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
