package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aidanlsb/ntn/internal/ui"
)

// jsonOutput is set by --json.
var jsonOutput bool

// Response is the envelope every command prints in JSON mode.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is a machine-readable failure.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem reported next to the data. Ref names the
// record or property it concerns.
type Warning struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Ref        string `json:"ref,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Meta carries counts and timings.
type Meta struct {
	Count       int   `json:"count,omitempty"`
	QueryTimeMs int64 `json:"query_time_ms,omitempty"`
}

func isJSONOutput() bool {
	return jsonOutput
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data interface{}, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Meta: meta})
}

func outputSuccessWithWarnings(data interface{}, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

// respond reports a failure. In JSON mode the envelope is printed and nil is
// returned so cobra stays quiet; in text mode the suggestion goes to stderr
// and err is returned for cobra to print.
func respond(code string, err error, suggestion string, details interface{}) error {
	if jsonOutput {
		outputJSON(Response{Error: &ErrorInfo{
			Code:       code,
			Message:    err.Error(),
			Details:    details,
			Suggestion: suggestion,
		}})
		return nil
	}
	if suggestion != "" {
		fmt.Fprintln(os.Stderr, ui.Hint(suggestion))
	}
	return err
}

func handleError(code string, err error, suggestion string) error {
	return respond(code, err, suggestion, nil)
}

func handleErrorMsg(code, message, suggestion string) error {
	return respond(code, errors.New(message), suggestion, nil)
}

func handleErrorWithDetails(code, message, suggestion string, details interface{}) error {
	return respond(code, errors.New(message), suggestion, details)
}
