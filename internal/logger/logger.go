// Package logger provides leveled diagnostics for the ntn CLI.
// Debug output is only written when verbose mode is enabled via --verbose;
// warnings are always written. Everything goes to stderr so stdout stays
// clean for --json consumers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	log   = newLogger(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// IsVerbose reports whether debug logging is enabled.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput sets the destination for log records. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w)
}

// Logger returns the shared logger, for callers that want to attach
// attributes with With.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs msg with key/value attributes when verbose mode is on.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs msg when verbose mode is on.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs msg regardless of verbose mode.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}
