// Package notionid normalises record identifiers and generates new ones.
package notionid

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrUnresolvable is returned when an argument cannot be turned into an id.
var ErrUnresolvable = errors.New("unresolvable identifier")

var trailingID = regexp.MustCompile(`(?i)([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|[0-9a-f]{32})$`)

// Normalize accepts a dashed or undashed id, or a page URL, and returns the
// lower-case dashed form.
func Normalize(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty id", ErrUnresolvable)
	}

	if id, ok := parse(s); ok {
		return id, nil
	}

	if u, err := url.Parse(s); err == nil && u.Host != "" {
		// Peeked pages carry the page id in ?p= while the path names the
		// parent database.
		if p := u.Query().Get("p"); p != "" {
			if id, ok := parse(p); ok {
				return id, nil
			}
		}
		segment := u.Path
		if i := strings.LastIndex(segment, "/"); i >= 0 {
			segment = segment[i+1:]
		}
		if m := trailingID.FindString(segment); m != "" {
			if id, ok := parse(m); ok {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnresolvable, input)
}

func parse(s string) (string, bool) {
	if len(s) != 32 && len(s) != 36 {
		return "", false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// New returns a fresh record id.
func New() string {
	return uuid.NewString()
}
