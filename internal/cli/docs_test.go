package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	builtindocs "github.com/aidanlsb/ntn/docs"
)

func TestListDocsTopicsFS(t *testing.T) {
	fsys := fstest.MapFS{
		"guide/zeta.md":        {Data: []byte("intro\n# Zeta Guide\n")},
		"guide/alpha.md":       {Data: []byte("no heading here\n")},
		"guide/notes.txt":      {Data: []byte("# Ignored\n")},
		"guide/nested/deep.md": {Data: []byte("# Deep\n")},
	}
	topics, err := listDocsTopicsFS(fsys, "guide")
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %+v", topics)
	}
	if topics[0].ID != "alpha" || topics[0].Title != "alpha" {
		t.Errorf("topic[0] = %+v", topics[0])
	}
	if topics[1].ID != "zeta" || topics[1].Title != "Zeta Guide" || topics[1].Path != "guide/zeta.md" {
		t.Errorf("topic[1] = %+v", topics[1])
	}

	if _, ok := findDocsTopic(topics, " Zeta.md "); !ok {
		t.Error("expected case-insensitive match with extension")
	}
	if _, ok := findDocsTopic(topics, "missing"); ok {
		t.Error("unexpected match")
	}
}

func TestSearchDocsFS(t *testing.T) {
	fsys := fstest.MapFS{
		"guide/a.md": {Data: []byte("# A\nRollup one\nnothing\nrollup two\n")},
		"guide/b.md": {Data: []byte("# B\nROLLUP three\n")},
	}
	matches, err := searchDocsFS(fsys, "guide", "rollup", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 || matches[0].Line != 2 || matches[1].Line != 4 || matches[2].Topic != "b" {
		t.Errorf("unexpected matches %+v", matches)
	}

	limited, _ := searchDocsFS(fsys, "guide", "rollup", 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestShortenDocsSnippet(t *testing.T) {
	line := strings.Repeat("a", 200) + "needle" + strings.Repeat("b", 200)
	got := shortenDocsSnippet(line, "needle")
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") || !strings.Contains(got, "needle") {
		t.Errorf("snippet = %q", got)
	}
	if got := shortenDocsSnippet("  short  ", "x"); got != "short" {
		t.Errorf("snippet = %q", got)
	}
}

func TestBundledGuides(t *testing.T) {
	topics, err := listDocsTopicsFS(builtindocs.FS, docsRoot)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"auth": true, "batch": true, "ids": true, "properties": true, "schema-hints": true}
	for _, topic := range topics {
		delete(want, topic.ID)
	}
	if len(want) != 0 {
		t.Errorf("missing guides: %v", want)
	}
}

func TestDocsCommandJSON(t *testing.T) {
	prev := jsonOutput
	t.Cleanup(func() { jsonOutput = prev })
	jsonOutput = true

	out := captureStdout(t, func() {
		if err := docsCmd.RunE(docsCmd, []string{"batch"}); err != nil {
			t.Fatal(err)
		}
	})
	var resp struct {
		OK   bool `json:"ok"`
		Data struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("parse: %v; out=%s", err, out)
	}
	if !resp.OK || resp.Data.Title != "Batch files" || !strings.Contains(resp.Data.Content, "page.create") {
		t.Errorf("unexpected response %+v", resp)
	}
}
