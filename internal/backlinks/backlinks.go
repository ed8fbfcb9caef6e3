// Package backlinks turns raw "mentioned from" entries into titled sources.
package backlinks

import (
	"github.com/aidanlsb/ntn/internal/pagetree"
	"github.com/aidanlsb/ntn/internal/richtext"
)

// Untitled is the title used for sources whose block was not returned.
const Untitled = "Untitled"

// Entry is one raw backlink as returned by the service.
type Entry struct {
	BlockID       string `json:"block_id"`
	MentionedFrom Source `json:"mentioned_from"`
}

// Source identifies the block a mention was found in.
type Source struct {
	Type       string `json:"type"`
	BlockID    string `json:"block_id"`
	PropertyID string `json:"property_id,omitempty"`
}

// Item is a formatted backlink.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SourceIDs returns the distinct source block ids; the first occurrence of an
// id wins.
func SourceIDs(entries []Entry) []string {
	seen := make(map[string]bool, len(entries))
	var out []string
	for _, e := range entries {
		id := e.MentionedFrom.BlockID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// UserIDs returns the user ids mentioned in the titles of the source blocks.
func UserIDs(entries []Entry, blocks pagetree.BlockSource) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range SourceIDs(entries) {
		b, ok := blocks.Block(id)
		if !ok {
			continue
		}
		for _, m := range b.Title().Mentions() {
			if m.Kind == richtext.MentionUser && !seen[m.ID] {
				seen[m.ID] = true
				out = append(out, m.ID)
			}
		}
	}
	return out
}

// Format resolves each distinct source block to {id, title}. User mentions
// are substituted from users; page mentions from the titles of blocks in
// the same source. Any mention that cannot be resolved keeps the marker
// character in place.
func Format(entries []Entry, blocks pagetree.BlockSource, users map[string]string) []Item {
	userOnly := func(m richtext.Mention) (string, bool) {
		if name, ok := users[m.ID]; ok && m.Kind == richtext.MentionUser {
			return name, true
		}
		return richtext.Marker, true
	}
	resolve := func(m richtext.Mention) (string, bool) {
		if m.Kind == richtext.MentionPage {
			// One level only: a mentioned page's own page mentions stay markers.
			if b, ok := blocks.Block(m.ID); ok {
				if title := b.Title().Decode(userOnly); title != "" {
					return title, true
				}
			}
			return richtext.Marker, true
		}
		return userOnly(m)
	}

	ids := SourceIDs(entries)
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		title := Untitled
		if b, ok := blocks.Block(id); ok {
			if t := b.Title().Decode(resolve); t != "" {
				title = t
			}
		}
		items = append(items, Item{ID: id, Title: title})
	}
	return items
}
