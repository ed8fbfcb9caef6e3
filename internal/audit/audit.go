// Package audit keeps an append-only journal of the transactions ntn
// submits, so writes can be reviewed after the fact.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aidanlsb/ntn/internal/mutate"
	"github.com/aidanlsb/ntn/internal/txn"
)

// Filename is the journal file kept next to config.toml.
const Filename = "audit.log"

// Entry is one submitted transaction.
type Entry struct {
	Timestamp     time.Time `json:"ts"`
	TransactionID string    `json:"txn"`
	SpaceID       string    `json:"space,omitempty"`
	Operations    []Op      `json:"ops"`
	Error         string    `json:"error,omitempty"`
}

// Op summarizes one operation without its arguments.
type Op struct {
	Table   string   `json:"table"`
	ID      string   `json:"id"`
	Command string   `json:"command"`
	Path    []string `json:"path,omitempty"`
}

// Logger appends entries to the journal. A disabled Logger is a no-op.
type Logger struct {
	path    string
	enabled bool
	now     func() time.Time
	mu      sync.Mutex
}

// New returns a logger writing to Filename in dir.
func New(dir string, enabled bool) *Logger {
	return &Logger{path: filepath.Join(dir, Filename), enabled: enabled, now: time.Now}
}

// Path returns the journal location.
func (l *Logger) Path() string {
	return l.path
}

// Enabled returns true if the logger records entries.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Log appends entry as one JSON line.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogTransaction records tx and the outcome of submitting it.
func (l *Logger) LogTransaction(tx txn.Transaction, saveErr error) error {
	entry := Entry{TransactionID: tx.ID, SpaceID: tx.SpaceID, Operations: make([]Op, len(tx.Operations))}
	for i, op := range tx.Operations {
		entry.Operations[i] = Op{Table: op.Pointer.Table, ID: op.Pointer.ID, Command: string(op.Command), Path: op.Path}
	}
	if saveErr != nil {
		entry.Error = saveErr.Error()
	}
	return l.Log(entry)
}

// Read returns every entry in the journal. Malformed lines are skipped.
func (l *Logger) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// ReadSince returns entries at or after since.
func (l *Logger) ReadSince(since time.Time) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var filtered []Entry
	for _, entry := range all {
		if !entry.Timestamp.Before(since) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// ReadForRecord returns entries with an operation on record id.
func (l *Logger) ReadForRecord(id string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var filtered []Entry
	for _, entry := range all {
		for _, op := range entry.Operations {
			if op.ID == id {
				filtered = append(filtered, entry)
				break
			}
		}
	}
	return filtered, nil
}

// Wrap returns api with every SaveTransactions call journaled to l. Journal
// failures never fail the write.
func Wrap(api mutate.API, l *Logger) mutate.API {
	if l == nil || !l.enabled {
		return api
	}
	return &journaled{API: api, log: l}
}

type journaled struct {
	mutate.API
	log *Logger
}

func (j *journaled) SaveTransactions(ctx context.Context, txs ...txn.Transaction) error {
	err := j.API.SaveTransactions(ctx, txs...)
	for _, tx := range txs {
		_ = j.log.LogTransaction(tx, err)
	}
	return err
}
