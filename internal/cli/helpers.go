package cli

import (
	"fmt"
	"os"

	"github.com/aidanlsb/ntn/internal/notionid"
	"github.com/aidanlsb/ntn/internal/schema"
	"github.com/aidanlsb/ntn/internal/ui"
)

// parseIDArg normalizes an id or URL argument.
func parseIDArg(arg string) (string, error) {
	return notionid.Normalize(arg)
}

// hintWarnings turns schema hints into response warnings.
func hintWarnings(hints []schema.Hint) []Warning {
	if len(hints) == 0 {
		return nil
	}
	out := make([]Warning, len(hints))
	for i, h := range hints {
		out[i] = Warning{
			Code:       WarnSchemaHint,
			Message:    fmt.Sprintf("Property '%s' (%s): %s", h.Property, h.Type, h.Problem),
			Ref:        h.PropertyID,
			Suggestion: h.Fix,
		}
	}
	return out
}

// printHints writes schema hints to stderr in text mode.
func printHints(hints []schema.Hint) {
	for _, h := range hints {
		fmt.Fprintln(os.Stderr, ui.Warning(h.String()))
	}
}
