// Package richtext decodes and encodes the service's decorated-text arrays.
//
// On the wire every human-readable value is a list of segments. A segment is
// a one- or two-element array: [text] or [text, [[tag, arg?], ...]]. When the
// text is the mention marker, the segment's meaning lives in its decorations.
package richtext

import (
	"encoding/json"
	"strings"
)

// Marker is the segment text used when a segment is a reference rather than
// literal text.
const Marker = "‣"

// Decoration tags.
const (
	TagBold   = "b"
	TagItalic = "i"
	TagStrike = "s"
	TagCode   = "c"
	TagLink   = "a"
	TagUser   = "u"
	TagPage   = "p"
	TagDate   = "d"
)

// Decoration is one [tag, arg?] tuple attached to a segment.
type Decoration struct {
	Tag string
	Arg json.RawMessage
}

// StringArg returns the decoration argument when it is a JSON string.
func (d Decoration) StringArg() (string, bool) {
	if len(d.Arg) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(d.Arg, &s); err != nil {
		return "", false
	}
	return s, true
}

// DateArg is the argument object of a date decoration.
type DateArg struct {
	Type      string `json:"type,omitempty"`
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
}

// Date returns the decoration argument as a date object.
func (d Decoration) Date() (DateArg, bool) {
	if d.Tag != TagDate || len(d.Arg) == 0 {
		return DateArg{}, false
	}
	var arg DateArg
	if err := json.Unmarshal(d.Arg, &arg); err != nil || arg.StartDate == "" {
		return DateArg{}, false
	}
	return arg, true
}

// MarshalJSON encodes the decoration as [tag] or [tag, arg].
func (d Decoration) MarshalJSON() ([]byte, error) {
	if len(d.Arg) == 0 {
		return json.Marshal([]string{d.Tag})
	}
	return json.Marshal([]interface{}{d.Tag, d.Arg})
}

// Segment is one (text, decorations?) pair.
type Segment struct {
	Text        string
	Decorations []Decoration
}

// IsMention reports whether the segment carries a reference instead of text.
func (s Segment) IsMention() bool {
	return s.Text == Marker
}

// MarshalJSON encodes the segment as [text] or [text, decorations].
func (s Segment) MarshalJSON() ([]byte, error) {
	if len(s.Decorations) == 0 {
		return json.Marshal([]string{s.Text})
	}
	return json.Marshal([]interface{}{s.Text, s.Decorations})
}

// Text is an ordered list of segments.
type Text []Segment

// UnmarshalJSON decodes leniently; see Parse.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Parse(b)
	return nil
}

// Parse decodes a raw decorated-text array. Malformed segments and
// decorations are skipped; Parse never fails.
func Parse(raw json.RawMessage) Text {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make(Text, 0, len(items))
	for _, item := range items {
		var parts []json.RawMessage
		if err := json.Unmarshal(item, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var seg Segment
		if err := json.Unmarshal(parts[0], &seg.Text); err != nil {
			continue
		}
		if len(parts) > 1 {
			seg.Decorations = parseDecorations(parts[1])
		}
		out = append(out, seg)
	}
	return out
}

func parseDecorations(raw json.RawMessage) []Decoration {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []Decoration
	for _, item := range items {
		var parts []json.RawMessage
		if err := json.Unmarshal(item, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var d Decoration
		if err := json.Unmarshal(parts[0], &d.Tag); err != nil {
			continue
		}
		if len(parts) > 1 {
			d.Arg = parts[1]
		}
		out = append(out, d)
	}
	return out
}

// MentionKind distinguishes page mentions from user mentions.
type MentionKind string

const (
	MentionPage MentionKind = "page"
	MentionUser MentionKind = "user"
)

// Mention is a reference to a page or user embedded in text.
type Mention struct {
	ID   string      `json:"id"`
	Kind MentionKind `json:"kind"`
}

// Resolver returns the display value for a mention. Returning false means the
// mention is unresolved.
type Resolver func(m Mention) (string, bool)

// Identity resolves every mention to its raw id.
func Identity(m Mention) (string, bool) {
	return m.ID, true
}

// Decode returns the plain-text value of t. Mention segments contribute the
// resolved value of their user, page or date decoration and are dropped when
// unresolved. Formatting decorations never change the result.
func (t Text) Decode(resolve Resolver) string {
	var b strings.Builder
	for _, seg := range t {
		if !seg.IsMention() {
			b.WriteString(seg.Text)
			continue
		}
		if v, ok := seg.mentionValue(resolve); ok {
			b.WriteString(v)
		}
	}
	return b.String()
}

// Plain decodes t with mentions rendered as their raw ids.
func (t Text) Plain() string {
	return t.Decode(Identity)
}

func (s Segment) mentionValue(resolve Resolver) (string, bool) {
	for _, d := range s.Decorations {
		switch d.Tag {
		case TagUser, TagPage:
			id, ok := d.StringArg()
			if !ok {
				continue
			}
			if resolve == nil {
				return "", false
			}
			return resolve(Mention{ID: id, Kind: kindForTag(d.Tag)})
		case TagDate:
			if arg, ok := d.Date(); ok {
				return FormatDate(arg), true
			}
		}
	}
	return "", false
}

// Mentions returns every page and user mention in t, in order.
func (t Text) Mentions() []Mention {
	var out []Mention
	for _, seg := range t {
		for _, d := range seg.Decorations {
			if d.Tag != TagUser && d.Tag != TagPage {
				continue
			}
			if id, ok := d.StringArg(); ok {
				out = append(out, Mention{ID: id, Kind: kindForTag(d.Tag)})
			}
		}
	}
	return out
}

// IDs returns the argument of every decoration carrying tag, in order.
func (t Text) IDs(tag string) []string {
	var out []string
	for _, seg := range t {
		for _, d := range seg.Decorations {
			if d.Tag != tag {
				continue
			}
			if id, ok := d.StringArg(); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

// FirstDate returns the first date decoration in t.
func (t Text) FirstDate() (DateArg, bool) {
	for _, seg := range t {
		for _, d := range seg.Decorations {
			if arg, ok := d.Date(); ok {
				return arg, true
			}
		}
	}
	return DateArg{}, false
}

// FormatDate renders a date as YYYY-MM-DD, or "start → end" for ranges.
func FormatDate(arg DateArg) string {
	if arg.EndDate != "" {
		return arg.StartDate + " → " + arg.EndDate
	}
	return arg.StartDate
}

func kindForTag(tag string) MentionKind {
	if tag == TagUser {
		return MentionUser
	}
	return MentionPage
}
