// Package property turns raw row properties into typed values and back.
package property

import (
	"encoding/json"

	"github.com/aidanlsb/ntn/internal/richtext"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindSelect
	KindMultiSelect
	KindDate
	KindRefs
	KindOpaque
	KindCheckbox
	KindString
	KindAutoIncrement
	KindGeneric
)

// Date is a decoded date or date range.
type Date struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Ref is a relation or person reference. Before enrichment only ID is set.
type Ref struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Mention is an in-text reference of a title or text value.
type Mention struct {
	ID      string               `json:"id"`
	Kind    richtext.MentionKind `json:"kind"`
	Display string               `json:"display,omitempty"`
}

// Value is one typed property value. Type is the schema type string; Kind
// selects which fields are meaningful.
type Value struct {
	Type string
	Kind Kind

	Text     string          // text, select, string, generic
	Mentions []Mention       // text
	Number   *float64        // number, auto_increment_id
	Prefix   string          // auto_increment_id
	Strings  []string        // multi_select
	Date     *Date           // date
	IDs      []string        // relation, person (before enrichment)
	Refs     []Ref           // relation, person (after enrichment)
	Resolved bool            // relation, person
	Bool     bool            // checkbox
	Raw      json.RawMessage // rollup, formula
}

// MarshalJSON renders {"type": ..., "value": ...} plus variant extras.
func (v Value) MarshalJSON() ([]byte, error) {
	out := struct {
		Type     string      `json:"type"`
		Value    interface{} `json:"value"`
		Prefix   string      `json:"prefix,omitempty"`
		Mentions []Mention   `json:"mentions,omitempty"`
	}{Type: v.Type}

	switch v.Kind {
	case KindText:
		out.Value = v.Text
		out.Mentions = v.Mentions
	case KindNumber:
		out.Value = v.Number
	case KindAutoIncrement:
		out.Value = v.Number
		out.Prefix = v.Prefix
	case KindMultiSelect:
		out.Value = nonNil(v.Strings)
	case KindDate:
		out.Value = v.Date
	case KindRefs:
		if v.Resolved {
			out.Value = v.Refs
			if v.Refs == nil {
				out.Value = []Ref{}
			}
		} else {
			out.Value = nonNil(v.IDs)
		}
	case KindOpaque:
		if len(v.Raw) > 0 {
			out.Value = v.Raw
		}
	case KindCheckbox:
		out.Value = v.Bool
	default:
		out.Value = v.Text
	}

	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Row is one decoded collection row keyed by property display name.
type Row struct {
	ID         string           `json:"id"`
	Properties map[string]Value `json:"properties"`
}
