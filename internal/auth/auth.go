// Package auth stores and resolves the credentials ntn signs requests with:
// the session token for the internal API and the integration key for the
// public API.
package auth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/aidanlsb/ntn/internal/atomicfile"
)

// Filename is the credentials file kept next to config.toml.
const Filename = "credentials.toml"

// Environment variables consulted before the credentials file.
const (
	EnvToken  = "NTN_TOKEN_V2"
	EnvAPIKey = "NTN_API_KEY"
)

// ErrNoCredentials is returned when no source provides a credential.
var ErrNoCredentials = errors.New("no credentials configured")

// Credentials is the persisted credentials file.
type Credentials struct {
	TokenV2 string `toml:"token_v2,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	UserID  string `toml:"user_id,omitempty"`
}

// Source names where a credential came from.
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceDotEnv Source = "dotenv"
	SourceFile   Source = "file"
)

// Path returns the credentials path inside a config directory.
func Path(configDir string) string {
	return filepath.Join(configDir, Filename)
}

// Load reads the credentials file. A missing file yields empty credentials.
func Load(path string) (*Credentials, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Credentials{}, nil
	}
	var creds Credentials
	if _, err := toml.DecodeFile(path, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	creds.TokenV2 = strings.TrimSpace(creds.TokenV2)
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	creds.UserID = strings.TrimSpace(creds.UserID)
	return &creds, nil
}

// Save writes the credentials file atomically, readable by the owner only.
func Save(path string, creds *Credentials) error {
	if creds == nil {
		creds = &Credentials{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write credentials %s: %w", path, err)
	}
	return nil
}

// Remove deletes the credentials file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials %s: %w", path, err)
	}
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

// ReadDotEnv reads variables from the given .env files, skipping files that
// do not exist. Later files win.
func ReadDotEnv(files ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range vars {
			out[k] = v
		}
	}
	return out, nil
}

// Resolver picks each credential from the first source that has it:
// command-line flag, process environment, .env file, credentials file.
type Resolver struct {
	FlagToken  string
	FlagAPIKey string
	Getenv     func(string) string
	DotEnv     map[string]string
	Path       string
}

// Token returns the session token for the internal API.
func (r Resolver) Token() (string, Source, error) {
	return r.resolve(r.FlagToken, EnvToken, func(c *Credentials) string { return c.TokenV2 })
}

// APIKey returns the integration key for the public API.
func (r Resolver) APIKey() (string, Source, error) {
	return r.resolve(r.FlagAPIKey, EnvAPIKey, func(c *Credentials) string { return c.APIKey })
}

// UserID returns the user id stored at login, if any.
func (r Resolver) UserID() string {
	if r.Path == "" {
		return ""
	}
	creds, err := Load(r.Path)
	if err != nil {
		return ""
	}
	return creds.UserID
}

func (r Resolver) resolve(flag, env string, fromFile func(*Credentials) string) (string, Source, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, SourceFlag, nil
	}
	if r.Getenv != nil {
		if v := strings.TrimSpace(r.Getenv(env)); v != "" {
			return v, SourceEnv, nil
		}
	}
	if v := strings.TrimSpace(r.DotEnv[env]); v != "" {
		return v, SourceDotEnv, nil
	}
	if r.Path != "" {
		creds, err := Load(r.Path)
		if err != nil {
			return "", "", err
		}
		if v := fromFile(creds); v != "" {
			return v, SourceFile, nil
		}
	}
	return "", "", fmt.Errorf("%w: set %s or run `ntn auth login`", ErrNoCredentials, env)
}
