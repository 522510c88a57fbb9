package types

import (
	"reflect"
	"testing"
)

func TestIssueProject(t *testing.T) {
	tests := []struct {
		name  string
		issue Issue
		want  string
	}{
		{"explicit project", Issue{Key: "DBX-1", ProjectKey: "OTHER"}, "OTHER"},
		{"derived from key", Issue{Key: "DBX-1734"}, "DBX"},
		{"hyphenated project", Issue{Key: "MY-PROJ-12"}, "MY-PROJ"},
		{"no separator", Issue{Key: "garbage"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.issue.Project(); got != tt.want {
				t.Errorf("Project() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInProject(t *testing.T) {
	tests := []struct {
		key     string
		project string
		want    bool
	}{
		{"DBX-1", "", true},
		{"DBX-1", "DBX", true},
		{"DBXA-1", "DBX", false},
		{"OPS-7", "DBX", false},
	}

	for _, tt := range tests {
		if got := InProject(tt.key, tt.project); got != tt.want {
			t.Errorf("InProject(%q, %q) = %v, want %v", tt.key, tt.project, got, tt.want)
		}
	}
}

func TestLinkIsClone(t *testing.T) {
	tests := []struct {
		name string
		link Link
		want bool
	}{
		{"cloners type", Link{Type: "Cloners", Inward: "is cloned by", Outward: "clones"}, true},
		{"outward only", Link{Type: "Custom", Outward: "Clones"}, true},
		{"blocks", Link{Type: "Blocks", Inward: "is blocked by", Outward: "blocks"}, false},
		{"relates", Link{Type: "Relates"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.IsClone(); got != tt.want {
				t.Errorf("IsClone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithLabelsDoesNotMutate(t *testing.T) {
	orig := &Issue{Key: "DBX-1", Labels: []string{"backend", "c1"}}
	updated := orig.WithLabels("c1", "c1.5")

	if want := []string{"backend", "c1"}; !reflect.DeepEqual(orig.Labels, want) {
		t.Errorf("original labels changed: %v", orig.Labels)
	}
	if want := []string{"backend", "c1", "c1.5"}; !reflect.DeepEqual(updated.Labels, want) {
		t.Errorf("updated labels = %v, want %v", updated.Labels, want)
	}
}

func TestMissingLabels(t *testing.T) {
	tests := []struct {
		name string
		want []string
		have []string
		exp  []string
	}{
		{"all present", []string{"c1", "c1.5"}, []string{"c1.5", "x", "c1"}, nil},
		{"some missing", []string{"c1", "c1.5", "c1.5.1"}, []string{"c1"}, []string{"c1.5", "c1.5.1"}},
		{"nothing present", []string{"c1"}, nil, []string{"c1"}},
		{"duplicates collapse", []string{"c1", "c1"}, nil, []string{"c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingLabels(tt.want, tt.have)
			if !reflect.DeepEqual(got, tt.exp) {
				t.Errorf("MissingLabels() = %v, want %v", got, tt.exp)
			}
		})
	}
}
