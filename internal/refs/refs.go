// Package refs resolves relation, person and mention ids in decoded rows.
//
// Resolution is split in two passes around one lookup the caller performs:
// Collect gathers the ids, the caller fetches their records in a single
// batch, and Enrich rewrites the rows with the resulting display values.
package refs

import (
	"sort"
	"strings"

	"github.com/aidanlsb/ntn/internal/property"
	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/schema"
)

// IDs holds the distinct page and user ids referenced by a set of rows.
type IDs struct {
	Pages []string
	Users []string
}

// Empty reports whether there is nothing to look up.
func (ids IDs) Empty() bool {
	return len(ids.Pages) == 0 && len(ids.Users) == 0
}

// Lookup maps ids to display values: page id to title, user id to name.
type Lookup struct {
	Pages map[string]string
	Users map[string]string
}

// Collect returns every relation id, person id and in-text mention id found
// in rows, deduplicated per kind. Ids are sorted for stable requests.
func Collect(rows []property.Row) IDs {
	pages := make(map[string]struct{})
	users := make(map[string]struct{})

	for _, row := range rows {
		for _, v := range row.Properties {
			switch v.Kind {
			case property.KindRefs:
				target := pages
				if v.Type == schema.TypePerson {
					target = users
				}
				for _, id := range v.IDs {
					target[id] = struct{}{}
				}
			case property.KindText:
				for _, m := range v.Mentions {
					if m.Kind == richtext.MentionUser {
						users[m.ID] = struct{}{}
					} else {
						pages[m.ID] = struct{}{}
					}
				}
			}
		}
	}

	return IDs{Pages: sortedKeys(pages), Users: sortedKeys(users)}
}

// Enrich rewrites rows in place. Relation and person values become {id,
// title} and {id, name} lists; a missed lookup keeps the bare id as the
// display value. Mention ids inside title and text values are replaced with
// their resolved display value.
func Enrich(rows []property.Row, lookup Lookup) {
	for _, row := range rows {
		for name, v := range row.Properties {
			switch v.Kind {
			case property.KindRefs:
				row.Properties[name] = enrichRefs(v, lookup)
			case property.KindText:
				if len(v.Mentions) > 0 {
					row.Properties[name] = enrichMentions(v, lookup)
				}
			}
		}
	}
}

func enrichRefs(v property.Value, lookup Lookup) property.Value {
	if v.Resolved {
		return v
	}
	person := v.Type == schema.TypePerson
	refs := make([]property.Ref, 0, len(v.IDs))
	for _, id := range v.IDs {
		if person {
			refs = append(refs, property.Ref{ID: id, Name: display(lookup.Users, id)})
		} else {
			refs = append(refs, property.Ref{ID: id, Title: display(lookup.Pages, id)})
		}
	}
	v.Refs = refs
	v.Resolved = true
	return v
}

func enrichMentions(v property.Value, lookup Lookup) property.Value {
	mentions := make([]property.Mention, len(v.Mentions))
	text := v.Text
	for i, m := range v.Mentions {
		table := lookup.Pages
		if m.Kind == richtext.MentionUser {
			table = lookup.Users
		}
		if resolved, ok := table[m.ID]; ok {
			text = strings.ReplaceAll(text, m.ID, resolved)
			m.Display = resolved
		}
		mentions[i] = m
	}
	v.Text = text
	v.Mentions = mentions
	return v
}

func display(table map[string]string, id string) string {
	if v, ok := table[id]; ok && v != "" {
		return v
	}
	return id
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
