package property

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/aidanlsb/ntn/internal/richtext"
)

func text(t *testing.T, src string) richtext.Text {
	t.Helper()
	return richtext.Parse(json.RawMessage(src))
}

func encode(t *testing.T, v Value) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		typ    string
		prefix string
		want   string
	}{
		{"title", `[["Launch "],["plan",[["b"]]]]`, "title", "", `{"type":"title","value":"Launch plan"}`},
		{"text with mention", `[["cc "],["‣",[["u","u1"]]]]`, "text", "", `{"type":"text","value":"cc u1","mentions":[{"id":"u1","kind":"user"}]}`},
		{"number", `[["42.5"]]`, "number", "", `{"type":"number","value":42.5}`},
		{"number not a number", `[["abc"]]`, "number", "", `{"type":"number","value":null}`},
		{"number NaN", `[["NaN"]]`, "number", "", `{"type":"number","value":null}`},
		{"number empty", `[]`, "number", "", `{"type":"number","value":null}`},
		{"select", `[["Done"]]`, "select", "", `{"type":"select","value":"Done"}`},
		{"multi select", `[["a,b , c"]]`, "multi_select", "", `{"type":"multi_select","value":["a","b","c"]}`},
		{"multi select empty", ``, "multi_select", "", `{"type":"multi_select","value":[]}`},
		{"date", `[["‣",[["d",{"type":"date","start_date":"2024-05-01"}]]]]`, "date", "", `{"type":"date","value":{"start":"2024-05-01"}}`},
		{"date range", `[["‣",[["d",{"type":"daterange","start_date":"2024-05-01","end_date":"2024-05-03"}]]]]`, "date", "", `{"type":"date","value":{"start":"2024-05-01","end":"2024-05-03"}}`},
		{"date missing", `[["soon"]]`, "date", "", `{"type":"date","value":null}`},
		{"relation", `[["‣",[["p","p1"]]],[","],["‣",[["p","p2"],["b"]]]]`, "relation", "", `{"type":"relation","value":["p1","p2"]}`},
		{"person", `[["‣",[["u","u1"]]]]`, "person", "", `{"type":"person","value":["u1"]}`},
		{"person empty", ``, "person", "", `{"type":"person","value":[]}`},
		{"rollup", `[["3"]]`, "rollup", "", `{"type":"rollup","value":[["3"]]}`},
		{"formula empty", ``, "formula", "", `{"type":"formula","value":null}`},
		{"checkbox yes", `[["Yes"]]`, "checkbox", "", `{"type":"checkbox","value":true}`},
		{"checkbox other", `[["yes"]]`, "checkbox", "", `{"type":"checkbox","value":false}`},
		{"checkbox missing", ``, "checkbox", "", `{"type":"checkbox","value":false}`},
		{"url", `[["https://example.com"]]`, "url", "", `{"type":"url","value":"https://example.com"}`},
		{"email", `[["a@b.c"]]`, "email", "", `{"type":"email","value":"a@b.c"}`},
		{"phone", `[["555"]]`, "phone_number", "", `{"type":"phone_number","value":"555"}`},
		{"status", `[["In progress"]]`, "status", "", `{"type":"status","value":"In progress"}`},
		{"auto increment", `[["12"]]`, "auto_increment_id", "TASK", `{"type":"auto_increment_id","value":12,"prefix":"TASK"}`},
		{"unknown type", `[["whatever"]]`, "button", "", `{"type":"button","value":"whatever"}`},
		{"empty type", `[["x"]]`, "", "", `{"type":"","value":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, Extract(text(t, tt.raw), tt.typ, tt.prefix))
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestExtractRefCountMatchesTaggedDecorations(t *testing.T) {
	raw := text(t, `[["‣",[["p","a"],["i"]]],["plain"],["‣",[["u","x"]]],["‣",[["p","b"]]],["bold",[["b"],["p","c"]]]]`)
	v := Extract(raw, "relation", "")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(v.IDs, want) {
		t.Errorf("relation ids = %v, want %v", v.IDs, want)
	}
	v = Extract(raw, "person", "")
	if want := []string{"x"}; !reflect.DeepEqual(v.IDs, want) {
		t.Errorf("person ids = %v, want %v", v.IDs, want)
	}
}

func TestRelationRoundTrip(t *testing.T) {
	ids := []string{"p3", "p1", "p2"}
	encoded, _ := json.Marshal(richtext.RelationRefs(ids))
	v := Extract(richtext.Parse(encoded), "relation", "")
	if !reflect.DeepEqual(v.IDs, ids) {
		t.Errorf("got %v, want %v", v.IDs, ids)
	}
}

func TestEncode(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		typ   string
		input string
		want  string
	}{
		{"title", "title", "Hello", `[["Hello"]]`},
		{"empty clears", "text", "  ", `[]`},
		{"number", "number", "3.5", `[["3.5"]]`},
		{"multi select", "multi_select", "a, b,,c", `[["a,b,c"]]`},
		{"checkbox", "checkbox", "true", `[["Yes"]]`},
		{"checkbox off", "checkbox", "no", `[["No"]]`},
		{"date", "date", "2025-01-02", `[["‣",[["d",{"type":"date","start_date":"2025-01-02"}]]]]`},
		{"date relative", "date", "tomorrow", `[["‣",[["d",{"type":"date","start_date":"2025-03-11"}]]]]`},
		{"date range", "date", "2025-01-02..2025-01-04", `[["‣",[["d",{"type":"daterange","start_date":"2025-01-02","end_date":"2025-01-04"}]]]]`},
		{"relation", "relation", "0123abcd456789abcdef0123456789ab", `[["‣",[["p","0123abcd-4567-89ab-cdef-0123456789ab"]]]]`},
		{"person", "person", "0123abcd-4567-89ab-cdef-0123456789ab", `[["‣",[["u","0123abcd-4567-89ab-cdef-0123456789ab"]]]]`},
		{"unknown type", "button", "x", `[["x"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.typ, tt.input, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			b, _ := json.Marshal(got)
			if string(b) != tt.want {
				t.Errorf("got  %s\nwant %s", b, tt.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	now := time.Now()
	cases := []struct{ typ, input string }{
		{"number", "ten"},
		{"checkbox", "maybe"},
		{"date", "next week"},
		{"date", "2025-01-05..2025-01-01"},
		{"relation", "not-an-id"},
		{"rollup", "1"},
		{"formula", "x"},
		{"auto_increment_id", "3"},
	}
	for _, c := range cases {
		if _, err := Encode(c.typ, c.input, now); err == nil {
			t.Errorf("%s %q: expected error", c.typ, c.input)
		}
	}
}
