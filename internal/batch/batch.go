// Package batch runs an ordered list of write operations read from a YAML
// or JSON file. Execution is fail-fast: the first failing operation stops
// the run, and operations already applied stay applied.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownOperation is returned when a batch names an operation the
// registry does not know. It is detected before anything runs.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is one entry of a batch file.
type Operation struct {
	Op   string `yaml:"op" json:"op"`
	Args Args   `yaml:"args" json:"args"`
}

// Handler applies one operation and returns the id of the record it
// created or changed.
type Handler func(ctx context.Context, args Args) (string, error)

// Registry maps operation names to handlers.
type Registry map[string]Handler

// Names returns the registered operation names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result statuses.
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Result reports the outcome of one operation.
type Result struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusApplied:
			s.Applied++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Parse reads a batch document. Both a bare list of operations and a
// mapping with an "operations" key are accepted; JSON is valid YAML.
func Parse(r io.Reader) ([]Operation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("batch is empty")
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var ops []Operation
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&ops)
	case yaml.MappingNode:
		var doc struct {
			Operations []Operation `yaml:"operations"`
		}
		err = root.Decode(&doc)
		ops = doc.Operations
	default:
		return nil, fmt.Errorf("parse batch: expected a list of operations")
	}
	if err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}

	for i, op := range ops {
		if strings.TrimSpace(op.Op) == "" {
			return nil, fmt.Errorf("operation %d: missing op", i+1)
		}
	}
	return ops, nil
}

// Validate checks that every operation is registered.
func (r Registry) Validate(ops []Operation) error {
	for i, op := range ops {
		if _, ok := r[op.Op]; !ok {
			return fmt.Errorf("operation %d: %w %q (known: %s)", i+1, ErrUnknownOperation, op.Op, strings.Join(r.Names(), ", "))
		}
	}
	return nil
}

// Run validates ops and applies them in order, stopping at the first
// failure. Operations after a failure are reported as skipped. The returned
// error wraps the failing operation's error.
func (r Registry) Run(ctx context.Context, ops []Operation) ([]Result, error) {
	return r.RunEach(ctx, ops, nil)
}

// RunEach is Run with fn called after each operation is settled.
func (r Registry) RunEach(ctx context.Context, ops []Operation, fn func(Result)) ([]Result, error) {
	if err := r.Validate(ops); err != nil {
		return nil, err
	}

	results := make([]Result, len(ops))
	var runErr error
	for i, op := range ops {
		res := Result{Index: i + 1, Op: op.Op, Status: StatusSkipped}
		if runErr == nil {
			if err := ctx.Err(); err != nil {
				runErr = err
			} else if id, err := r[op.Op](ctx, op.Args); err != nil {
				res.Status = StatusFailed
				res.Error = err.Error()
				runErr = fmt.Errorf("operation %d (%s): %w", i+1, op.Op, err)
			} else {
				res.Status = StatusApplied
				res.ID = id
			}
		}
		results[i] = res
		if fn != nil {
			fn(res)
		}
	}
	return results, runErr
}
