package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for a fresh install.
const (
	DefaultAPIBaseURL = "https://event-discovery-backend.onrender.com/api"
	DefaultListen     = "127.0.0.1:8080"
	DefaultRadiusKm   = 10
	defaultRefresh    = "*/15 * * * *"
	defaultTimeoutSec = 10
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the local Web UI.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// APIBaseURL is the remote event-discovery REST API root,
	// e.g. "https://example.com/api".
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`

	// Listen is the HTTP listen address for the local companion UI.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for calendar day boundaries and
	// display (e.g. "Europe/Berlin"). Empty means the system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first day of the week in calendar views.
	// Supported values: "monday", "sunday" (default).
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for the
	// background event refresh in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultRadiusKm seeds the location filter radius, 1-500.
	DefaultRadiusKm float64 `yaml:"default_radius_km" json:"default_radius_km"`

	// DefaultCategory preselects a category filter; empty means none.
	DefaultCategory string `yaml:"default_category" json:"default_category"`

	// HTTPTimeoutSeconds bounds every call to the remote API.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`

	// DataDir holds the token store, response cache and rendered preview.
	// Empty means a directory next to the config file.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// local endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:         DefaultAPIBaseURL,
		Listen:             DefaultListen,
		Timezone:           "",
		WeekStart:          "sunday",
		RefreshCron:        defaultRefresh,
		DefaultRadiusKm:    DefaultRadiusKm,
		HTTPTimeoutSeconds: defaultTimeoutSec,
		LogLevel:           "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly. Environment variables
// override file values: EVSCOUT_API_BASE_URL, EVSCOUT_LISTEN,
// EVSCOUT_LOG_LEVEL, EVSCOUT_TIMEZONE.
func (c *Config) Normalize() {
	if v := os.Getenv("EVSCOUT_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("EVSCOUT_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("EVSCOUT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("EVSCOUT_TIMEZONE"); v != "" {
		c.Timezone = v
	}

	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "sunday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.DefaultRadiusKm < 1 || c.DefaultRadiusKm > 500 {
		c.DefaultRadiusKm = DefaultRadiusKm
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = defaultTimeoutSec
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultPath returns the per-user config file location,
// e.g. ~/.config/evscout/config.yaml.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "evscout.yaml"
	}
	return filepath.Join(base, "evscout", "config.yaml")
}

// ResolveDataDir returns the effective data directory for the given config
// file path, creating nothing.
func (c *Config) ResolveDataDir(configPath string) string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Dir(configPath)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write
//     a default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, and normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so the caller
				// can decide.
				return cfg, err
			}
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Final file permissions are 0600 (the file may hold basic-auth
//     credentials).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".evscout-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// HTTPTimeout returns the remote-API timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone, falling back to the system
// local zone when unset or invalid.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
