package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/ntn/internal/atomicfile"
)

type persistedConfig struct {
	BaseURL           *string              `toml:"base_url,omitempty"`
	APIBaseURL        *string              `toml:"api_base_url,omitempty"`
	UserID            *string              `toml:"user_id,omitempty"`
	TimeoutSeconds    *int                 `toml:"timeout_seconds,omitempty"`
	RequestsPerSecond *float64             `toml:"requests_per_second,omitempty"`
	QueryLimit        *int                 `toml:"query_limit,omitempty"`
	TimeZone          *string              `toml:"time_zone,omitempty"`
	UI                *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonZeroPtr[T int | float64](value T) *T {
	if value == 0 {
		return nil
	}
	return &value
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		BaseURL:           nonEmptyPtr(cfg.BaseURL),
		APIBaseURL:        nonEmptyPtr(cfg.APIBaseURL),
		UserID:            nonEmptyPtr(cfg.UserID),
		TimeoutSeconds:    nonZeroPtr(cfg.TimeoutSeconds),
		RequestsPerSecond: nonZeroPtr(cfg.RequestsPerSecond),
		QueryLimit:        nonZeroPtr(cfg.QueryLimit),
		TimeZone:          nonEmptyPtr(cfg.TimeZone),
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
