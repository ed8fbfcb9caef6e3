package cli

import (
	"errors"
	"os"

	"github.com/aidanlsb/ntn/internal/auth"
	"github.com/aidanlsb/ntn/internal/batch"
	"github.com/aidanlsb/ntn/internal/fetch"
	"github.com/aidanlsb/ntn/internal/mutate"
	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/notionid"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Record errors
	ErrRecordNotFound   = "RECORD_NOT_FOUND"
	ErrIDUnresolvable   = "ID_UNRESOLVABLE"
	ErrNotDatabase      = "NOT_DATABASE"
	ErrUnknownProperty  = "UNKNOWN_PROPERTY"
	ErrUnknownOperation = "UNKNOWN_OPERATION"

	// Auth errors
	ErrAuthMissing = "AUTH_MISSING"
	ErrAuthFailed  = "AUTH_FAILED"

	// Transport errors
	ErrAPIError = "API_ERROR"

	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Batch errors
	ErrBatchFailed = "BATCH_FAILED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnSchemaHint = "SCHEMA_HINT"
)

// classify maps an error to its response code and a suggestion.
func classify(err error) (string, string) {
	var apiErr *notion.APIError
	switch {
	case errors.Is(err, notionid.ErrUnresolvable):
		return ErrIDUnresolvable, "Pass a page id (dashed or undashed) or a page URL"
	case errors.Is(err, auth.ErrNoCredentials):
		return ErrAuthMissing, "Run 'ntn auth login --token <token_v2>'"
	case errors.Is(err, mutate.ErrNoUser):
		return ErrAuthMissing, "Set user_id in config.toml or NTN_USER_ID"
	case errors.Is(err, notion.ErrUnauthorized):
		return ErrAuthFailed, "The session token may have expired; run 'ntn auth login' again"
	case errors.Is(err, fetch.ErrNotDatabase):
		return ErrNotDatabase, "Pass the id of a database page or collection"
	case errors.Is(err, notion.ErrNotFound):
		return ErrRecordNotFound, ""
	case errors.Is(err, mutate.ErrUnknownProperty):
		return ErrUnknownProperty, "Run 'ntn db schema <id>' to list properties"
	case errors.Is(err, batch.ErrUnknownOperation):
		return ErrUnknownOperation, ""
	case errors.As(err, &apiErr):
		return ErrAPIError, ""
	case errors.Is(err, os.ErrNotExist):
		return ErrFileReadError, ""
	}
	return ErrInternal, ""
}

// fail reports err with the code classify assigns it.
func fail(err error) error {
	code, suggestion := classify(err)
	return handleError(code, err, suggestion)
}
