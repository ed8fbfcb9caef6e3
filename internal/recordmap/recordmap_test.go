package recordmap

import (
	"encoding/json"
	"testing"
)

func mustMap(t *testing.T, src string) RecordMap {
	t.Helper()
	var m RecordMap
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("unmarshal record map: %v", err)
	}
	return m
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		wrapper string
		want    string
		found   bool
	}{
		{"single wrapped", `{"value":{"id":"b1","type":"text"}}`, `{"id":"b1","type":"text"}`, true},
		{"double wrapped", `{"value":{"value":{"id":"b1"},"role":"editor"}}`, `{"id":"b1"}`, true},
		{"role without nested value", `{"value":{"id":"b1","role":"reader"}}`, `{"id":"b1","role":"reader"}`, true},
		{"nested value without role", `{"value":{"value":{"id":"b1"}}}`, `{"value":{"id":"b1"}}`, true},
		{"role with null value", `{"value":{"value":null,"role":"none"}}`, `{"value":null,"role":"none"}`, true},
		{"missing value", `{"role":"reader"}`, "", false},
		{"null value", `{"value":null}`, "", false},
		{"null wrapper", `null`, "", false},
		{"empty wrapper", ``, "", false},
		{"malformed wrapper", `[1,2]`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(json.RawMessage(tt.wrapper))
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBlock(t *testing.T) {
	m := mustMap(t, `{
		"block": {
			"b1": {"value": {"value": {"id": "b1", "type": "to_do", "alive": true,
				"properties": {"title": [["Buy milk"]], "checked": [["Yes"]]}, "content": ["b2"]}, "role": "editor"}},
			"b2": {"value": {"id": "b2", "type": "text", "alive": false}},
			"b3": {"value": {"type": "text", "properties": {"title": 7}}},
			"b4": {"value": {"role": "none"}}
		}
	}`)

	t.Run("double wrapped block", func(t *testing.T) {
		b, ok := m.Block("b1")
		if !ok {
			t.Fatal("expected b1")
		}
		if b.Title().Plain() != "Buy milk" || !b.Checked() {
			t.Errorf("unexpected block %+v", b)
		}
		if len(b.Content) != 1 || b.Content[0] != "b2" {
			t.Errorf("unexpected content %v", b.Content)
		}
	})

	t.Run("dead block is absent", func(t *testing.T) {
		if _, ok := m.Block("b2"); ok {
			t.Error("dead block should be absent")
		}
	})

	t.Run("id filled from key and bad property tolerated", func(t *testing.T) {
		b, ok := m.Block("b3")
		if !ok {
			t.Fatal("expected b3")
		}
		if b.ID != "b3" {
			t.Errorf("got id %q", b.ID)
		}
		if len(b.Title()) != 0 {
			t.Errorf("expected empty title")
		}
	})

	t.Run("inaccessible and missing", func(t *testing.T) {
		if _, ok := m.Block("b4"); ok {
			t.Error("record without a type should be absent")
		}
		if _, ok := m.Block("nope"); ok {
			t.Error("missing record should be absent")
		}
		if _, ok := RecordMap(nil).Block("b1"); ok {
			t.Error("nil map should report absent")
		}
	})
}

func TestCollectionAndUser(t *testing.T) {
	m := mustMap(t, `{
		"collection": {"c1": {"value": {"id": "c1", "name": [["Tasks"]],
			"schema": {"title": {"name": "Name", "type": "title"}, "s": {"name": "Status", "type": "status"}}}}},
		"notion_user": {
			"u1": {"value": {"value": {"id": "u1", "given_name": "Freya", "family_name": "Njord"}, "role": "reader"}},
			"u2": {"value": {"id": "u2", "email": "odin@example.com"}}
		}
	}`)

	c, ok := m.Collection("c1")
	if !ok {
		t.Fatal("expected collection")
	}
	if c.Name.Plain() != "Tasks" || len(c.Schema) != 2 || c.Schema[0].ID != "title" {
		t.Errorf("unexpected collection %+v", c)
	}

	u, ok := m.User("u1")
	if !ok || u.DisplayName() != "Freya Njord" {
		t.Errorf("unexpected user %+v", u)
	}
	u, ok = m.User("u2")
	if !ok || u.DisplayName() != "odin@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestMerge(t *testing.T) {
	a := mustMap(t, `{"block": {"b1": {"value": {"id": "b1", "type": "text"}}}}`)
	b := mustMap(t, `{"block": {"b2": {"value": {"id": "b2", "type": "text"}}}, "notion_user": {"u1": {"value": {"id": "u1"}}}}`)
	a.Merge(b)

	if _, ok := a.Block("b1"); !ok {
		t.Error("lost b1")
	}
	if _, ok := a.Block("b2"); !ok {
		t.Error("missing b2")
	}
	if _, ok := a.User("u1"); !ok {
		t.Error("missing u1")
	}
}
