package mdblocks

import (
	"encoding/json"
	"testing"

	"github.com/aidanlsb/ntn/internal/txn"
)

func types(specs []txn.BlockSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Type
	}
	return out
}

func title(t *testing.T, spec txn.BlockSpec) string {
	t.Helper()
	b, err := json.Marshal(spec.Properties["title"])
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestParseBlockTypes(t *testing.T) {
	src := `# Plan

Intro paragraph.

## Steps

- one
- two

1. first

- [ ] open task
- [x] done task

> quoted

---

### Code

` + "```go\nfmt.Println(1)\n```\n"

	specs := Parse([]byte(src))
	want := []string{
		"header", "text", "sub_header",
		"bulleted_list", "bulleted_list", "numbered_list",
		"to_do", "to_do", "quote", "divider", "sub_sub_header", "code",
	}
	got := types(specs)
	if len(got) != len(want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if title(t, specs[6]) != `[["open task"]]` || title(t, specs[7]) != `[["done task"]]` {
		t.Errorf("task titles: %s %s", title(t, specs[6]), title(t, specs[7]))
	}
	checked, _ := json.Marshal(specs[7].Properties["checked"])
	if string(checked) != `[["Yes"]]` {
		t.Errorf("checked = %s", checked)
	}

	code := specs[11]
	if title(t, code) != `[["fmt.Println(1)"]]` {
		t.Errorf("code = %s", title(t, code))
	}
	lang, _ := json.Marshal(code.Properties["language"])
	if string(lang) != `[["go"]]` {
		t.Errorf("language = %s", lang)
	}
}

func TestParseInline(t *testing.T) {
	specs := Parse([]byte("Some **bold** and _it_ with `code`, ~~gone~~ and [a link](https://x.test)."))
	if len(specs) != 1 {
		t.Fatalf("expected 1 block, got %d", len(specs))
	}
	want := `[["Some "],["bold",[["b"]]],[" and "],["it",[["i"]]],[" with "],["code",[["c"]]],[", "],["gone",[["s"]]],[" and "],["a link",[["a","https://x.test"]]],["."]]`
	if got := title(t, specs[0]); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestParseSoftBreaksJoin(t *testing.T) {
	specs := Parse([]byte("line one\nline two\n"))
	if got := title(t, specs[0]); got != `[["line one line two"]]` {
		t.Errorf("got %s", got)
	}
}

func TestParseNestedList(t *testing.T) {
	specs := Parse([]byte("- parent\n  - child\n    - grandchild\n- sibling\n"))
	if len(specs) != 2 {
		t.Fatalf("expected 2 top-level items, got %v", types(specs))
	}
	parent := specs[0]
	if len(parent.Children) != 1 || title(t, parent.Children[0]) != `[["child"]]` {
		t.Fatalf("unexpected children %+v", parent.Children)
	}
	if len(parent.Children[0].Children) != 1 {
		t.Errorf("grandchild missing")
	}
}

func TestParseEmpty(t *testing.T) {
	if specs := Parse([]byte("  \n\n")); len(specs) != 0 {
		t.Errorf("expected no blocks, got %v", types(specs))
	}
}
