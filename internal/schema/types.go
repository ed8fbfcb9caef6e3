// Package schema decodes collection schemas, simplifies them into a
// name-keyed form for output, and reports structural defects as hints.
package schema

import (
	"bytes"
	"encoding/json"
)

// Property types known to the decoder. Other type strings still decode; they
// fall through to generic handling.
const (
	TypeTitle           = "title"
	TypeText            = "text"
	TypeNumber          = "number"
	TypeSelect          = "select"
	TypeMultiSelect     = "multi_select"
	TypeStatus          = "status"
	TypeDate            = "date"
	TypePerson          = "person"
	TypeRelation        = "relation"
	TypeRollup          = "rollup"
	TypeFormula         = "formula"
	TypeCheckbox        = "checkbox"
	TypeURL             = "url"
	TypeEmail           = "email"
	TypePhoneNumber     = "phone_number"
	TypeAutoIncrementID = "auto_increment_id"
)

// TitleID is the fixed property id of every collection's title property.
const TitleID = "title"

// Option is one choice of a select, multi_select or status property.
type Option struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// Property is a raw property definition as stored on the collection.
type Property struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Alive *bool  `json:"alive,omitempty"`

	// select, multi_select, status
	Options []Option `json:"options,omitempty"`

	// relation
	CollectionID string `json:"collection_id,omitempty"`

	// rollup
	RelationProperty   string          `json:"relation_property,omitempty"`
	TargetProperty     string          `json:"target_property,omitempty"`
	TargetPropertyType string          `json:"target_property_type,omitempty"`
	RollupType         string          `json:"rollup_type,omitempty"`
	Aggregation        json.RawMessage `json:"aggregation,omitempty"`

	// auto_increment_id
	Prefix string `json:"prefix,omitempty"`
}

// IsAlive reports whether the property has not been soft-deleted.
func (p Property) IsAlive() bool {
	return p.Alive == nil || *p.Alive
}

// HasAggregation reports whether the aggregation key is present at all.
func (p Property) HasAggregation() bool {
	return len(p.Aggregation) > 0
}

// Entry pairs a property id with its definition.
type Entry struct {
	ID       string
	Property Property
}

// Raw is a collection schema in document order. Keeping the order makes
// display-name collisions resolve the same way on every run.
type Raw []Entry

// UnmarshalJSON decodes a property-id keyed object, preserving key order.
// Properties that fail to decode are skipped; a non-object decodes as empty.
func (r *Raw) UnmarshalJSON(b []byte) error {
	*r = nil

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var out Raw
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		id, ok := tok.(string)
		if !ok {
			break
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		var p Property
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		out = append(out, Entry{ID: id, Property: p})
	}
	*r = out
	return nil
}

// Lookup returns the property with the given id.
func (r Raw) Lookup(id string) (Property, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].ID == id {
			return r[i].Property, true
		}
	}
	return Property{}, false
}

// Live returns the entries that have not been soft-deleted.
func (r Raw) Live() []Entry {
	out := make([]Entry, 0, len(r))
	for _, e := range r {
		if e.Property.IsAlive() {
			out = append(out, e)
		}
	}
	return out
}

// IDForName returns the id of the live property that owns name in simplified
// output (the last live property with that name).
func (r Raw) IDForName(name string) (string, Property, bool) {
	var (
		id    string
		prop  Property
		found bool
	)
	for _, e := range r {
		if e.Property.IsAlive() && e.Property.Name == name {
			id, prop, found = e.ID, e.Property, true
		}
	}
	return id, prop, found
}
