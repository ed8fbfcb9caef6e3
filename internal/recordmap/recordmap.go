// Package recordmap navigates the table -> id -> wrapper container returned by
// the internal API's read endpoints.
package recordmap

import (
	"bytes"
	"encoding/json"
)

// Tables present in a record map.
const (
	TableBlock          = "block"
	TableCollection     = "collection"
	TableCollectionView = "collection_view"
	TableComment        = "comment"
	TableDiscussion     = "discussion"
	TableUser           = "notion_user"
	TableSpace          = "space"
)

// RecordMap maps table name to record id to the raw record wrapper.
type RecordMap map[string]map[string]json.RawMessage

// Resolve unwraps a record wrapper. Some endpoints return {value: fields};
// others return {value: {value: fields, role: ...}}. The second shape is
// detected structurally: a role sibling next to a nested value.
// Resolve reports false when the wrapper or its value is missing.
func Resolve(wrapper json.RawMessage) (json.RawMessage, bool) {
	if isNull(wrapper) {
		return nil, false
	}

	var outer struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(wrapper, &outer); err != nil || isNull(outer.Value) {
		return nil, false
	}

	var inner struct {
		Role  json.RawMessage `json:"role"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(outer.Value, &inner); err == nil && len(inner.Role) > 0 && !isNull(inner.Value) {
		return inner.Value, true
	}
	return outer.Value, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Record returns the unwrapped fields of one record.
func (m RecordMap) Record(table, id string) (json.RawMessage, bool) {
	records, ok := m[table]
	if !ok {
		return nil, false
	}
	wrapper, ok := records[id]
	if !ok {
		return nil, false
	}
	return Resolve(wrapper)
}

// decode unwraps and decodes a record into v. Records that do not decode are
// reported as absent.
func (m RecordMap) decode(table, id string, v interface{}) bool {
	fields, ok := m.Record(table, id)
	if !ok {
		return false
	}
	return json.Unmarshal(fields, v) == nil
}

// IDs returns the record ids present in table.
func (m RecordMap) IDs(table string) []string {
	ids := make([]string, 0, len(m[table]))
	for id := range m[table] {
		ids = append(ids, id)
	}
	return ids
}

// Merge copies every record of other into m, overwriting duplicates.
func (m RecordMap) Merge(other RecordMap) {
	for table, records := range other {
		if m[table] == nil {
			m[table] = make(map[string]json.RawMessage, len(records))
		}
		for id, wrapper := range records {
			m[table][id] = wrapper
		}
	}
}
