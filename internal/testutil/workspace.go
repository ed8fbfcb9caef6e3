// Package testutil provides fakes and harnesses for ntn tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Workspace is a temporary config directory plus working directory for
// running the ntn binary against a fake server.
type Workspace struct {
	// Path is the working directory commands run in.
	Path string
	// ConfigPath is the config.toml passed with --config.
	ConfigPath string
	API        *FakeAPI
	ServerURL  string

	t      *testing.T
	config []string
	files  map[string]string
}

// NewWorkspace creates a workspace builder over api. Call Build to create
// the directories and start the server.
func NewWorkspace(t *testing.T, api *FakeAPI) *Workspace {
	t.Helper()
	return &Workspace{
		t:     t,
		API:   api,
		files: make(map[string]string),
	}
}

// WithConfig adds a raw TOML line to config.toml.
func (w *Workspace) WithConfig(line string) *Workspace {
	w.config = append(w.config, line)
	return w
}

// WithFile adds a file relative to the working directory.
func (w *Workspace) WithFile(path, content string) *Workspace {
	w.files[path] = content
	return w
}

// Build starts the fake server and writes config.toml and all files.
func (w *Workspace) Build() *Workspace {
	w.t.Helper()

	w.ServerURL = w.API.Serve(w.t).URL
	w.Path = w.t.TempDir()
	w.ConfigPath = filepath.Join(w.t.TempDir(), "config.toml")

	lines := append([]string{fmt.Sprintf("base_url = %q", w.ServerURL)}, w.config...)
	if err := os.WriteFile(w.ConfigPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		w.t.Fatalf("failed to write config: %v", err)
	}

	for path, content := range w.files {
		w.writeFile(path, content)
	}
	return w
}

func (w *Workspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		w.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", relPath, err)
	}
}

// ReadFile returns the content of a file relative to the working directory.
func (w *Workspace) ReadFile(relPath string) string {
	w.t.Helper()
	data, err := os.ReadFile(filepath.Join(w.Path, relPath))
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(data)
}

// AssertFileExists fails the test if the file does not exist.
func (w *Workspace) AssertFileExists(relPath string) {
	w.t.Helper()
	if _, err := os.Stat(filepath.Join(w.Path, relPath)); os.IsNotExist(err) {
		w.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain substr.
func (w *Workspace) AssertFileContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}
