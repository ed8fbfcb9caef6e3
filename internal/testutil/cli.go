package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	buildOnce sync.Mutex
	binary    string
)

// CLIResult is the parsed JSON envelope of one ntn invocation.
type CLIResult struct {
	OK       bool                   `json:"ok"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    *CLIError              `json:"error,omitempty"`
	Warnings []CLIWarning           `json:"warnings,omitempty"`
	Meta     *CLIMeta               `json:"meta,omitempty"`

	RawJSON  string `json:"-"`
	Stderr   string `json:"-"`
	ExitCode int    `json:"-"`
}

// CLIError is the error part of the envelope.
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
}

// CLIWarning is one envelope warning.
type CLIWarning struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Ref        string `json:"ref,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CLIMeta is the envelope metadata.
type CLIMeta struct {
	Count       int   `json:"count,omitempty"`
	QueryTimeMs int64 `json:"query_time_ms,omitempty"`
}

// BuildCLI compiles ./cmd/ntn once per test binary and returns its path.
func BuildCLI(t *testing.T) string {
	t.Helper()
	buildOnce.Lock()
	defer buildOnce.Unlock()

	if binary != "" {
		if _, err := os.Stat(binary); err == nil {
			return binary
		}
	}

	root, err := moduleRoot()
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	dir, err := os.MkdirTemp("", "ntn-cli-bin-*")
	if err != nil {
		t.Fatalf("create build dir: %v", err)
	}
	name := "ntn"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	out := filepath.Join(dir, name)

	cmd := exec.Command("go", "build", "-o", out, "./cmd/ntn")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build ntn: %v\n%s", err, output)
	}
	binary = out
	return binary
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs ntn in the workspace with --config and --json.
func (w *Workspace) RunCLI(args ...string) *CLIResult {
	w.t.Helper()
	return w.run("", args...)
}

// RunCLIWithStdin is RunCLI with stdin attached.
func (w *Workspace) RunCLIWithStdin(stdin string, args ...string) *CLIResult {
	w.t.Helper()
	return w.run(stdin, args...)
}

func (w *Workspace) run(stdin string, args ...string) *CLIResult {
	w.t.Helper()

	cmd := exec.Command(BuildCLI(w.t), append([]string{"--config", w.ConfigPath, "--json"}, args...)...)
	cmd.Dir = w.Path
	cmd.Env = append(os.Environ(), "NTN_TOKEN_V2="+Token, "NTN_BASE_URL=", "NTN_USER_ID=", "NO_COLOR=1")
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &CLIResult{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	if err := json.Unmarshal(stdout.Bytes(), result); err != nil {
		result.OK = false
		result.Error = &CLIError{Code: "PARSE_ERROR", Message: fmt.Sprintf("parse JSON output: %v", err)}
	}
	result.RawJSON = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// MustSucceed fails the test unless the command reported ok.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected success, got %s\nstdout: %s\nstderr: %s", msg, r.RawJSON, r.Stderr)
	}
	return r
}

// MustFail fails the test unless the command failed with code.
func (r *CLIResult) MustFail(t *testing.T, code string) *CLIResult {
	t.Helper()
	switch {
	case r.OK:
		t.Fatalf("expected failure %s, got success\nstdout: %s", code, r.RawJSON)
	case r.Error == nil:
		t.Fatalf("expected failure %s, got no error\nstdout: %s", code, r.RawJSON)
	case r.Error.Code != code:
		t.Fatalf("expected failure %s, got %s: %s", code, r.Error.Code, r.Error.Message)
	}
	return r
}

// DataList returns Data[key] as a list, or nil.
func (r *CLIResult) DataList(key string) []interface{} {
	list, _ := r.Data[key].([]interface{})
	return list
}

// DataString returns Data[key] as a string, or "".
func (r *CLIResult) DataString(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

// AssertNoWarnings fails the test if the result carries warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got %+v", r.Warnings)
	}
}

// AssertHasWarning fails the test unless a warning with code is present.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning %s, got %+v", code, r.Warnings)
}
