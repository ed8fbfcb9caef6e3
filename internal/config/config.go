// Package config handles global ntn configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appDir         = "ntn"
	configFilename = "config.toml"

	DefaultTimeout = 30 * time.Second
)

// Environment variables that override file settings.
const (
	EnvUserID  = "NTN_USER_ID"
	EnvBaseURL = "NTN_BASE_URL"
)

// Config represents the global ntn configuration.
type Config struct {
	// BaseURL is the origin of the internal API (defaults to https://www.notion.so).
	BaseURL string `toml:"base_url"`

	// APIBaseURL overrides the public API origin for `ntn api` commands.
	APIBaseURL string `toml:"api_base_url"`

	// UserID selects the active user when the session holds several.
	UserID string `toml:"user_id"`

	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond throttles outgoing requests. Negative disables it.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// QueryLimit is the default row limit for `ntn db query`.
	QueryLimit int `toml:"query_limit"`

	// TimeZone is sent with queries so date grouping matches the user.
	TimeZone string `toml:"time_zone"`

	// Audit journals every submitted transaction to audit.log.
	Audit bool `toml:"audit"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	// Example values: "monokai", "dracula", "github", "nord".
	CodeTheme string `toml:"code_theme"`
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvUserID)); v != "" {
		c.UserID = v
	}
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads the configuration from a specific path.
// Returns a default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// Dir returns the directory holding the config file, where other
// machine-local files (credentials) live too.
func Dir(explicitConfigPath string) string {
	return filepath.Dir(ResolveConfigPath(explicitConfigPath))
}

// DefaultPath returns the default config file path.
// Checks ~/.config/ntn/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	// Prefer XDG-style ~/.config/ntn/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", appDir, configFilename)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	// Fall back to XDG config dir or OS-specific location
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, appDir, configFilename)
	}

	// Last resort fallback
	return filepath.Join(".", configFilename)
}

// CreateDefault creates a commented default config file at path if it
// doesn't exist.
func CreateDefault(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# ntn configuration

# Origin of the internal API.
# base_url = "https://www.notion.so"

# Active user when the session is signed in to several accounts.
# user_id = ""

# Per-request timeout and client-side throttle.
# timeout_seconds = 30
# requests_per_second = 3

# Default row limit for ntn db query.
# query_limit = 100
# time_zone = "Europe/Oslo"

# Journal every write to audit.log next to this file (see ntn history).
# audit = false

# Optional UI accent color for headers/links in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
