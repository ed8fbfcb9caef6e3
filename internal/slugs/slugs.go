// Package slugs turns page titles into file names for exports, built on
// gosimple/slug.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// fallback is used when a title has no sluggable characters.
const fallback = "untitled"

// ComponentSlug converts a string to a URL-safe slug appropriate for a
// single file or directory name.
func ComponentSlug(s string) string {
	s = strings.TrimSuffix(s, ".md")
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}

// PageFilename returns "<title-slug>-<id-prefix>.md". The id prefix keeps
// pages with equal titles apart; dashes are stripped so dashed and undashed
// ids produce the same name.
func PageFilename(title, id string) string {
	base := goslug.Make(title)
	if base == "" {
		base = fallback
	}
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		return base + ".md"
	}
	return base + "-" + short + ".md"
}
