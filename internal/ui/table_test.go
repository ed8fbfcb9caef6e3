package ui

import (
	"strings"
	"testing"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer sentence", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTableRendersRows(t *testing.T) {
	tbl := NewTable(NewDisplayContextWithWidth(80), "id", "title")
	if tbl.String() != "" {
		t.Fatal("empty table should render nothing")
	}
	tbl.AddRow("p1", "Launch\nplan")
	tbl.AddRow("p2")

	out := tbl.String()
	for _, want := range []string{"id", "title", "p1", "Launch plan", "p2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d", tbl.Len())
	}
}
