package schema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func mustRaw(t *testing.T, src string) Raw {
	t.Helper()
	var raw Raw
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return raw
}

func TestRawPreservesOrder(t *testing.T) {
	raw := mustRaw(t, `{"zz":{"name":"Z","type":"text"},"aa":{"name":"A","type":"text"},"mm":{"name":"M","type":"number"}}`)
	var ids []string
	for _, e := range raw {
		ids = append(ids, e.ID)
	}
	if want := []string{"zz", "aa", "mm"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("got %v, want %v", ids, want)
	}
}

func TestRawTolerantDecode(t *testing.T) {
	t.Run("malformed property skipped", func(t *testing.T) {
		raw := mustRaw(t, `{"a":{"name":"A","type":"text"},"b":{"name":42},"c":{"name":"C","type":"checkbox"}}`)
		if len(raw) != 2 {
			t.Fatalf("expected 2 properties, got %d", len(raw))
		}
		if _, ok := raw.Lookup("b"); ok {
			t.Error("malformed property should be skipped")
		}
	})

	t.Run("non-object decodes empty", func(t *testing.T) {
		for _, src := range []string{`null`, `[]`, `"x"`} {
			raw := mustRaw(t, src)
			if len(raw) != 0 {
				t.Errorf("%s: expected empty schema, got %v", src, raw)
			}
		}
	})
}

func TestSimplify(t *testing.T) {
	t.Run("title and select", func(t *testing.T) {
		raw := mustRaw(t, `{"title":{"name":"Name","type":"title"},"p1":{"name":"Status","type":"select","options":[{"value":"Done"}]}}`)
		got := Simplify(raw)
		want := Simplified{
			"Name":   {Type: "title"},
			"Status": {Type: "select", Options: []string{"Done"}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}

		encoded, _ := json.Marshal(got)
		if string(encoded) != `{"Name":{"type":"title"},"Status":{"type":"select","options":["Done"]}}` {
			t.Errorf("unexpected JSON: %s", encoded)
		}
	})

	t.Run("dead properties excluded", func(t *testing.T) {
		raw := mustRaw(t, `{"title":{"name":"Name","type":"title"},"old":{"name":"Legacy","type":"text","alive":false}}`)
		got := Simplify(raw)
		if _, ok := got["Legacy"]; ok {
			t.Error("dead property must not appear in simplified output")
		}
		for name := range got {
			_, prop, ok := raw.IDForName(name)
			if !ok || !prop.IsAlive() {
				t.Errorf("simplified key %q has no live property", name)
			}
		}
	})

	t.Run("dead property does not shadow live name", func(t *testing.T) {
		raw := mustRaw(t, `{"a":{"name":"Owner","type":"person"},"b":{"name":"Owner","type":"text","alive":false}}`)
		got := Simplify(raw)
		if got["Owner"].Type != "person" {
			t.Errorf("expected live person property, got %+v", got["Owner"])
		}
	})

	t.Run("name collision is last write wins in document order", func(t *testing.T) {
		raw := mustRaw(t, `{"a":{"name":"Due","type":"date"},"b":{"name":"Due","type":"text"}}`)
		if got := Simplify(raw)["Due"].Type; got != "text" {
			t.Errorf("got %q, want text", got)
		}
	})

	t.Run("rollup relation resolved to live name", func(t *testing.T) {
		raw := mustRaw(t, `{
			"rel":{"name":"Projects","type":"relation","collection_id":"c2"},
			"dead":{"name":"Old","type":"relation","collection_id":"c3","alive":false},
			"r1":{"name":"Count","type":"rollup","relation_property":"rel","target_property":"title","rollup_type":"relation"},
			"r2":{"name":"Stale","type":"rollup","relation_property":"dead","rollup_type":"relation"}
		}`)
		got := Simplify(raw)
		if got["Count"].RelationProperty != "Projects" {
			t.Errorf("got %q", got["Count"].RelationProperty)
		}
		if got["Stale"].RelationProperty != "" {
			t.Errorf("dead relation must not be resolved, got %q", got["Stale"].RelationProperty)
		}
		if got["Projects"].CollectionID != "c2" {
			t.Errorf("relation collection id missing: %+v", got["Projects"])
		}
	})

	t.Run("auto increment prefix", func(t *testing.T) {
		raw := mustRaw(t, `{"id":{"name":"ID","type":"auto_increment_id","prefix":"TASK"}}`)
		if got := Simplify(raw)["ID"].Prefix; got != "TASK" {
			t.Errorf("got %q", got)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("clean schema has no hints", func(t *testing.T) {
		raw := mustRaw(t, `{
			"title":{"name":"Name","type":"title"},
			"rel":{"name":"Projects","type":"relation","collection_id":"c2"},
			"r":{"name":"Count","type":"rollup","relation_property":"rel","rollup_type":"relation"}
		}`)
		if hints := Validate(raw, "coll"); len(hints) != 0 {
			t.Errorf("expected no hints, got %v", Strings(hints))
		}
	})

	t.Run("rollup missing rollup_type", func(t *testing.T) {
		raw := mustRaw(t, `{
			"rel":{"name":"Projects","type":"relation","collection_id":"c2"},
			"r":{"name":"Total","type":"rollup","relation_property":"rel"}
		}`)
		hints := Validate(raw, "coll")
		found := false
		for _, s := range Strings(hints) {
			if strings.Contains(s, "Total") && strings.Contains(s, "rollup_type") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected rollup_type hint, got %v", Strings(hints))
		}
	})

	t.Run("every defect gets its own hint", func(t *testing.T) {
		raw := mustRaw(t, `{"r":{"name":"Broken","type":"rollup","aggregation":"sum"}}`)
		hints := Validate(raw, "coll")
		if len(hints) != 3 {
			t.Fatalf("expected 3 hints, got %d: %v", len(hints), Strings(hints))
		}
		joined := strings.Join(Strings(hints), "\n")
		for _, want := range []string{"no relation_property", "rollup_type", "aggregation"} {
			if !strings.Contains(joined, want) {
				t.Errorf("missing hint containing %q in:\n%s", want, joined)
			}
		}
	})

	t.Run("rollup relation property checks", func(t *testing.T) {
		raw := mustRaw(t, `{
			"dead":{"name":"Gone","type":"relation","collection_id":"c","alive":false},
			"txt":{"name":"Notes","type":"text"},
			"a":{"name":"A","type":"rollup","relation_property":"missing","rollup_type":"relation"},
			"b":{"name":"B","type":"rollup","relation_property":"dead","rollup_type":"relation"},
			"c":{"name":"C","type":"rollup","relation_property":"txt","rollup_type":"relation"}
		}`)
		hints := Validate(raw, "coll")
		problems := map[string]string{}
		for _, h := range hints {
			problems[h.PropertyID] = h.Problem
		}
		if !strings.Contains(problems["a"], "does not exist") {
			t.Errorf("a: got %q", problems["a"])
		}
		if !strings.Contains(problems["b"], "is deleted") {
			t.Errorf("b: got %q", problems["b"])
		}
		if !strings.Contains(problems["c"], "not a relation") {
			t.Errorf("c: got %q", problems["c"])
		}
		if !strings.Contains(problems["dead"], "alive: false") {
			t.Errorf("dead: got %q", problems["dead"])
		}
	})

	t.Run("relation without collection", func(t *testing.T) {
		raw := mustRaw(t, `{"rel":{"name":"Plan","type":"relation"}}`)
		hints := Validate(raw, "coll-1")
		if len(hints) != 1 {
			t.Fatalf("expected 1 hint, got %v", Strings(hints))
		}
		s := hints[0].String()
		for _, want := range []string{"Plan", "relation", "collection_id", "ntn db patch-property coll-1 rel"} {
			if !strings.Contains(s, want) {
				t.Errorf("hint %q missing %q", s, want)
			}
		}
	})

	t.Run("duplicate display names", func(t *testing.T) {
		raw := mustRaw(t, `{"a":{"name":"Due","type":"date"},"b":{"name":"Due","type":"text"}}`)
		hints := Validate(raw, "coll")
		if len(hints) != 1 || hints[0].PropertyID != "a" {
			t.Fatalf("expected one hint for the shadowed property, got %v", Strings(hints))
		}
		if !strings.Contains(hints[0].Problem, "b") {
			t.Errorf("hint should name the winning property: %q", hints[0].Problem)
		}
	})

	t.Run("placeholder collection id", func(t *testing.T) {
		raw := mustRaw(t, `{"x":{"name":"X","type":"text","alive":false}}`)
		hints := Validate(raw, "")
		if len(hints) != 1 || !strings.Contains(hints[0].Fix, "<collection-id>") {
			t.Errorf("unexpected hints %v", Strings(hints))
		}
	})
}

func TestValidateQuotesPropertyIDs(t *testing.T) {
	var raw Raw
	if err := json.Unmarshal([]byte(`{"a;Q<": {"name": "Blocked by", "type": "relation"}}`), &raw); err != nil {
		t.Fatal(err)
	}
	hints := Validate(raw, "coll-1")
	if len(hints) != 1 {
		t.Fatalf("expected 1 hint, got %+v", hints)
	}
	if want := "ntn db patch-property coll-1 'a;Q<' --set"; !strings.Contains(hints[0].Fix, want) {
		t.Errorf("fix %q does not contain %q", hints[0].Fix, want)
	}
}

// unquotedMeta returns the first shell metacharacter outside single quotes.
func unquotedMeta(s string) (byte, bool) {
	quoted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' {
			quoted = !quoted
			continue
		}
		if !quoted && strings.IndexByte("|;&$`\"()<>\\", c) >= 0 {
			return c, true
		}
	}
	return 0, false
}

func TestValidateFixesAreShellSafe(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   []string
	}{
		{
			name: "rollup with several relation candidates",
			schema: `{
				"r1":{"name":"Projects","type":"relation","collection_id":"c1"},
				"r2":{"name":"People","type":"relation","collection_id":"c2"},
				"ru":{"name":"Count","type":"rollup","rollup_type":"relation"}
			}`,
			want: []string{"ntn db patch-property coll ru --set relation_property=r1"},
		},
		{
			name: "rollup pointing at an odd relation id",
			schema: `{
				"a|b":{"name":"Projects","type":"relation","collection_id":"c1"},
				"ru":{"name":"Count","type":"rollup","rollup_type":"relation"}
			}`,
			want: []string{"--set 'relation_property=a|b'"},
		},
		{
			name: "name collision with command substitution in the id",
			schema: `{
				"a$(id)":{"name":"N","type":"text"},
				"b":{"name":"N","type":"text"}
			}`,
			want: []string{"'a$(id)' --set 'name=N (a$(id))'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := Validate(mustRaw(t, tt.schema), "coll")
			if len(hints) == 0 {
				t.Fatal("expected hints")
			}
			fixes := make([]string, len(hints))
			for i, h := range hints {
				fixes[i] = h.Fix
				if c, ok := unquotedMeta(h.Fix); ok {
					t.Errorf("fix %q has unquoted %q", h.Fix, c)
				}
			}
			joined := strings.Join(fixes, "\n")
			for _, w := range tt.want {
				if !strings.Contains(joined, w) {
					t.Errorf("fixes %q missing %q", joined, w)
				}
			}
		})
	}
}

func TestValidateListsOtherRelations(t *testing.T) {
	raw := mustRaw(t, `{
		"r1":{"name":"Projects","type":"relation","collection_id":"c1"},
		"r2":{"name":"People","type":"relation","collection_id":"c2"},
		"ru":{"name":"Count","type":"rollup","rollup_type":"relation"}
	}`)
	hints := Validate(raw, "coll")
	if len(hints) != 1 {
		t.Fatalf("expected 1 hint, got %v", Strings(hints))
	}
	if !strings.Contains(hints[0].Problem, "other relations: r2") {
		t.Errorf("problem %q should list r2", hints[0].Problem)
	}
}
