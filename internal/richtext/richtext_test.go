package richtext

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("plain segments", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["Hello "],["world"]]`))
		if len(text) != 2 {
			t.Fatalf("expected 2 segments, got %d", len(text))
		}
		if text[0].Text != "Hello " || text[1].Text != "world" {
			t.Errorf("unexpected segments: %+v", text)
		}
		if text[0].Decorations != nil {
			t.Errorf("expected no decorations, got %v", text[0].Decorations)
		}
	})

	t.Run("decorated segment", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["bold",[["b"]]],["link",[["a","https://example.com"]]]]`))
		if len(text) != 2 {
			t.Fatalf("expected 2 segments, got %d", len(text))
		}
		if text[0].Decorations[0].Tag != TagBold {
			t.Errorf("expected bold tag, got %q", text[0].Decorations[0].Tag)
		}
		url, ok := text[1].Decorations[0].StringArg()
		if !ok || url != "https://example.com" {
			t.Errorf("got url %q (%v)", url, ok)
		}
	})

	t.Run("malformed input never fails", func(t *testing.T) {
		cases := []string{``, `null`, `"text"`, `{}`, `[1, [], [2], ["ok"]]`, `[["x", "not-a-list"]]`}
		for _, c := range cases {
			_ = Parse(json.RawMessage(c))
		}
		text := Parse(json.RawMessage(`[1, [], [2], ["ok"]]`))
		if len(text) != 1 || text[0].Text != "ok" {
			t.Errorf("expected only the valid segment, got %+v", text)
		}
		text = Parse(json.RawMessage(`[["x", "not-a-list"]]`))
		if len(text) != 1 || text[0].Decorations != nil {
			t.Errorf("expected segment without decorations, got %+v", text)
		}
	})

	t.Run("unmarshal into Text", func(t *testing.T) {
		var props map[string]Text
		if err := json.Unmarshal([]byte(`{"title":[["A"],["B"]],"bad":42}`), &props); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if props["title"].Plain() != "AB" {
			t.Errorf("got %q", props["title"].Plain())
		}
		if len(props["bad"]) != 0 {
			t.Errorf("expected empty text for malformed value")
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("concatenates segments in order", func(t *testing.T) {
		text := Text{{Text: "a"}, {Text: "b", Decorations: []Decoration{{Tag: TagItalic}}}, {Text: "c"}}
		if got := text.Decode(nil); got != "abc" {
			t.Errorf("got %q, want %q", got, "abc")
		}
	})

	t.Run("formatting decorations keep literal text", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["Read "],["this",[["b"],["a","https://x.y"]]]]`))
		if got := text.Plain(); got != "Read this" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("mentions resolved through resolver", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["Ask "],["‣",[["u","user-1"]]],[" about "],["‣",[["p","page-1"]]]]`))
		names := map[string]string{"user-1": "Freya", "page-1": "Roadmap"}
		got := text.Decode(func(m Mention) (string, bool) {
			v, ok := names[m.ID]
			return v, ok
		})
		if got != "Ask Freya about Roadmap" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unresolved mentions are dropped", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["Ask "],["‣",[["u","user-1"]]]]`))
		got := text.Decode(func(Mention) (string, bool) { return "", false })
		if got != "Ask " {
			t.Errorf("got %q", got)
		}
		if got := text.Decode(nil); got != "Ask " {
			t.Errorf("nil resolver: got %q", got)
		}
	})

	t.Run("plain keeps raw ids", func(t *testing.T) {
		text := Parse(json.RawMessage(`[["See "],["‣",[["p","page-9"]]]]`))
		if got := text.Plain(); got != "See page-9" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("dates", func(t *testing.T) {
		single := Parse(json.RawMessage(`[["‣",[["d",{"type":"date","start_date":"2024-03-01"}]]]]`))
		if got := single.Plain(); got != "2024-03-01" {
			t.Errorf("got %q", got)
		}
		rng := Parse(json.RawMessage(`[["‣",[["d",{"type":"daterange","start_date":"2024-03-01","end_date":"2024-03-05"}]]]]`))
		if got := rng.Plain(); got != "2024-03-01 → 2024-03-05" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("marker without decorations is dropped", func(t *testing.T) {
		text := Text{{Text: "x"}, {Text: Marker}}
		if got := text.Plain(); got != "x" {
			t.Errorf("got %q", got)
		}
	})
}

func TestMentions(t *testing.T) {
	text := Parse(json.RawMessage(`[["‣",[["u","u1"]]],[" and "],["‣",[["p","p1"]]],["bold",[["b"]]]]`))
	want := []Mention{{ID: "u1", Kind: MentionUser}, {ID: "p1", Kind: MentionPage}}
	if got := text.Mentions(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRelationRefsRoundTrip(t *testing.T) {
	ids := []string{"page-b", "page-a", "page-c"}

	encoded, err := json.Marshal(RelationRefs(ids))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[["‣",[["p","page-b"]]],["‣",[["p","page-a"]]],["‣",[["p","page-c"]]]]`
	if string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}

	decoded := Parse(encoded)
	if got := decoded.IDs(TagPage); !reflect.DeepEqual(got, ids) {
		t.Errorf("round trip = %v, want %v", got, ids)
	}
}

func TestEncoders(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		raw, _ := json.Marshal(FromString("hi"))
		if string(raw) != `[["hi"]]` {
			t.Errorf("got %s", raw)
		}
		raw, _ = json.Marshal(FromString(""))
		if string(raw) != `[]` {
			t.Errorf("got %s", raw)
		}
	})

	t.Run("date range", func(t *testing.T) {
		text := DateRange("2024-01-01", "2024-01-02")
		arg, ok := text.FirstDate()
		if !ok {
			t.Fatal("expected a date decoration")
		}
		if arg.Type != "daterange" || arg.EndDate != "2024-01-02" {
			t.Errorf("unexpected arg %+v", arg)
		}
	})

	t.Run("users", func(t *testing.T) {
		text := UserRefs([]string{"u1"})
		if got := text.IDs(TagUser); len(got) != 1 || got[0] != "u1" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("checkbox", func(t *testing.T) {
		if Checkbox(true).Plain() != "Yes" || Checkbox(false).Plain() != "No" {
			t.Error("unexpected checkbox encoding")
		}
	})
}
