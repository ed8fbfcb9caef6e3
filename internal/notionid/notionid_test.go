package notionid

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	const want = "0123abcd-4567-89ab-cdef-0123456789ab"

	tests := []struct {
		name  string
		input string
	}{
		{"dashed", want},
		{"undashed", "0123abcd456789abcdef0123456789ab"},
		{"upper case", "0123ABCD-4567-89AB-CDEF-0123456789AB"},
		{"padded", "  0123abcd456789abcdef0123456789ab\n"},
		{"page url", "https://www.notion.so/acme/Roadmap-0123abcd456789abcdef0123456789ab"},
		{"page url with view", "https://www.notion.so/0123abcd456789abcdef0123456789ab?v=ffffffffffffffffffffffffffffffff"},
		{"peek url", "https://www.notion.so/acme/eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee?p=0123abcd456789abcdef0123456789ab&pm=s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestNormalizeUnresolvable(t *testing.T) {
	for _, input := range []string{"", "roadmap", "https://www.notion.so/acme/Roadmap", "0123abcd"} {
		_, err := Normalize(input)
		if !errors.Is(err, ErrUnresolvable) {
			t.Errorf("%q: expected ErrUnresolvable, got %v", input, err)
		}
	}
}

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if got, err := Normalize(a); err != nil || got != a {
		t.Errorf("generated id %q does not normalise to itself: %q %v", a, got, err)
	}
}
