package roadmap

import "testing"

func TestParseCode(t *testing.T) {
	tests := []struct {
		summary string
		want    Code
		ok      bool
	}{
		{"C1 Platform reliability", "C1", true},
		{"C1.5.1. Faster search", "C1.5.1", true},
		{"  M7 leading spaces", "M7", true},
		{"C12.3.45 multi digit", "C12.3.45", true},
		{"C1.5.1.1", "C1.5.1.1", true},
		{"c1 lowercase", "", false},
		{"Improve search", "", false},
		{"Fix C1 later in title", "", false},
		{"CC1 two letters", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			got, ok := ParseCode(tt.summary)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseCode(%q) = (%q, %v), want (%q, %v)", tt.summary, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCodeFamilyAndLabel(t *testing.T) {
	c := Code("C1.5")
	if c.Family() != "C" {
		t.Errorf("Family() = %q, want %q", c.Family(), "C")
	}
	if c.Label() != "c1.5" {
		t.Errorf("Label() = %q, want %q", c.Label(), "c1.5")
	}
	if Code("").Family() != "" {
		t.Error("empty code should have no family")
	}
}
