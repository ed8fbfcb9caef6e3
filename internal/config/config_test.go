package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "" || cfg.Timeout() != DefaultTimeout {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `base_url = "https://notion.example"
user_id = "u-1"
timeout_seconds = 5
requests_per_second = -1
query_limit = 20

[ui]
accent = "#ff8800"
code_theme = "dracula"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://notion.example" || cfg.UserID != "u-1" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.RequestsPerSecond != -1 || cfg.QueryLimit != 20 {
		t.Errorf("unexpected limits %+v", cfg)
	}
	if cfg.UI.Accent != "#ff8800" || cfg.UI.CodeTheme != "dracula" {
		t.Errorf("unexpected ui %+v", cfg.UI)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("base_url = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{UserID: "file", BaseURL: "https://file"}
	env := map[string]string{EnvUserID: " env-user "}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.UserID != "env-user" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.BaseURL != "https://file" {
		t.Errorf("unset env var must not override: %q", cfg.BaseURL)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/tmp/x.toml"); got != "/tmp/x.toml" {
		t.Errorf("explicit path ignored: %s", got)
	}
	if got := Dir("/tmp/cfg/x.toml"); got != "/tmp/cfg" {
		t.Errorf("Dir = %s", got)
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ntn", "config.toml")
	got, err := CreateDefault(path)
	if err != nil || got != path {
		t.Fatalf("CreateDefault = %q, %v", got, err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("default config must parse: %v", err)
	}
	if cfg.BaseURL != "" {
		t.Errorf("defaults should be commented out, got %+v", cfg)
	}
}
