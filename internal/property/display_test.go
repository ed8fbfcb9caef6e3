package property

import "testing"

func TestDisplay(t *testing.T) {
	n := 12.0
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"text", Value{Kind: KindText, Text: "hello"}, "hello"},
		{"number", Value{Kind: KindNumber, Number: func() *float64 { f := 42.5; return &f }()}, "42.5"},
		{"empty number", Value{Kind: KindNumber}, ""},
		{"auto increment", Value{Kind: KindAutoIncrement, Number: &n, Prefix: "TASK"}, "TASK-12"},
		{"multi select", Value{Kind: KindMultiSelect, Strings: []string{"a", "b"}}, "a, b"},
		{"date range", Value{Kind: KindDate, Date: &Date{Start: "2025-01-01", End: "2025-01-03"}}, "2025-01-01 → 2025-01-03"},
		{"unresolved refs", Value{Kind: KindRefs, IDs: []string{"p1", "p2"}}, "p1, p2"},
		{"resolved refs", Value{Kind: KindRefs, Resolved: true, Refs: []Ref{{ID: "p1", Title: "Plan"}, {ID: "u1", Name: "Freya"}, {ID: "x"}}}, "Plan, Freya, x"},
		{"checked", Value{Kind: KindCheckbox, Bool: true}, "✓"},
		{"unchecked", Value{Kind: KindCheckbox}, ""},
		{"opaque", Value{Kind: KindOpaque, Raw: []byte(`[["3"]]`)}, `[["3"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
