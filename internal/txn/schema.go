package txn

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aidanlsb/ntn/internal/recordmap"
)

// Patch describes an edit to one schema property.
type Patch struct {
	// Set assigns keys. Values that parse as JSON are stored as such;
	// anything else is stored as a string.
	Set map[string]string `json:"set,omitempty"`
	// Unset deletes keys.
	Unset []string `json:"unset,omitempty"`
	// Remove drops the whole property from the schema.
	Remove bool `json:"remove,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Unset) == 0 && !p.Remove
}

// PatchSchema applies p to the property propertyID of a collection schema
// and returns the patched schema. The input map is not modified.
func PatchSchema(schema map[string]json.RawMessage, propertyID string, p Patch) (map[string]json.RawMessage, error) {
	raw, ok := schema[propertyID]
	if !ok {
		return nil, fmt.Errorf("schema has no property %q", propertyID)
	}

	out := make(map[string]json.RawMessage, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	if p.Remove {
		delete(out, propertyID)
		return out, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode property %q: %w", propertyID, err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	for _, key := range p.Unset {
		delete(fields, key)
	}
	for key, value := range p.Set {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("empty key in --set")
		}
		fields[key] = literal(value)
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode property %q: %w", propertyID, err)
	}
	out[propertyID] = encoded
	return out, nil
}

func literal(value string) json.RawMessage {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	encoded, _ := json.Marshal(value)
	return encoded
}

// SetSchema replaces the schema of a collection.
func (b *Builder) SetSchema(collectionID string, schema map[string]json.RawMessage) []Operation {
	return []Operation{b.set(recordmap.TableCollection, collectionID, []string{"schema"}, schema)}
}
