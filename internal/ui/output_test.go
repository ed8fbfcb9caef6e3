package ui

import "testing"

func TestStatusMessages(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", Successf("created %s", "page"), "✓ created page"},
		{"error", Error("failed"), "✗ failed"},
		{"warning", Warningf("%d hints", 2), "⚠ 2 hints"},
		{"info", Info("nothing to do"), "ℹ nothing to do"},
		{"count singular", Count(1, "row", "rows"), "(1 row)"},
		{"count plural", Count(0, "row", "rows"), "(0 rows)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
