package richtext

import (
	"encoding/json"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `[["hello"]]`, "hello"},
		{"bold italic", `[["a "],["big",[["b"],["i"]]],[" deal"]]`, "a **_big_** deal"},
		{"emphasis keeps outer spaces", `[["x"],[" loud ",[["b"]]],["y"]]`, "x **loud** y"},
		{"code", `[["go test",[["c"]]]]`, "`go test`"},
		{"link", `[["docs",[["a","https://example.com"]]]]`, "[docs](https://example.com)"},
		{"strike link", `[["old",[["s"],["a","https://x.test"]]]]`, "~~[old](https://x.test)~~"},
		{"date mention", `[["due "],["‣",[["d",{"type":"date","start_date":"2024-01-02"}]]]]`, "due 2024-01-02"},
		{"user mention", `[["cc "],["‣",[["u","u1"]]]]`, "cc u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(json.RawMessage(tt.raw)).Markdown(Identity)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownDropsUnresolved(t *testing.T) {
	text := Parse(json.RawMessage(`[["see "],["‣",[["p","p1"]]]]`))
	got := text.Markdown(func(Mention) (string, bool) { return "", false })
	if got != "see " {
		t.Errorf("got %q", got)
	}
}
