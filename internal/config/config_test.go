package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultListen, cfg.Listen)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.APIBaseURL = "https://api.example.test/api"
	cfg.Timezone = "Europe/Berlin"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/api", got.APIBaseURL)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	require.NotNil(t, got.BasicAuth)
	assert.Equal(t, "u", got.BasicAuth.Username)
}

func TestNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, float64(DefaultRadiusKm), cfg.DefaultRadiusKm)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Positive(t, cfg.HTTPTimeoutSeconds)
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cfg := Config{WeekStart: "thursday", DefaultRadiusKm: 900}
	cfg.Normalize()
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, float64(DefaultRadiusKm), cfg.DefaultRadiusKm)
}

func TestNormalizeEnvOverrides(t *testing.T) {
	t.Setenv("EVSCOUT_API_BASE_URL", "https://override.test/api")
	t.Setenv("EVSCOUT_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.Normalize()
	assert.Equal(t, "https://override.test/api", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestResolveDataDir(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "/etc/evscout", cfg.ResolveDataDir("/etc/evscout/config.yaml"))

	cfg.DataDir = "/var/lib/evscout"
	assert.Equal(t, "/var/lib/evscout", cfg.ResolveDataDir("/etc/evscout/config.yaml"))
}

func TestLocationFallback(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	assert.Equal(t, "Local", cfg.Location().String())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}
