// Package types defines core data structures for the sk roadmap tools.
package types

import (
	"slices"
	"strings"
	"time"
)

// Issue is a point-in-time snapshot of a tracker issue.
// Issues are never edited in place; label changes produce a new snapshot.
type Issue struct {
	Key         string    `json:"key"` // e.g. "DBX-1734"
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Assignee    string    `json:"assignee,omitempty"` // Display name; empty when unassigned
	Labels      []string  `json:"labels,omitempty"`
	IssueType   string    `json:"issue_type,omitempty"`
	ProjectKey  string    `json:"project,omitempty"`
	ParentKey   string    `json:"parent,omitempty"`
	Links       []Link    `json:"links,omitempty"` // Outbound links in tracker order
	URL         string    `json:"url,omitempty"`
	Updated     time.Time `json:"updated,omitzero"`
}

// Project returns the project key of the issue, falling back to the
// prefix of the issue key ("DBX-1734" -> "DBX").
func (i *Issue) Project() string {
	if i.ProjectKey != "" {
		return i.ProjectKey
	}
	return ProjectOf(i.Key)
}

// WithLabels returns a copy of the issue whose label set is the union of the
// current labels and the given ones. The receiver is not modified.
func (i *Issue) WithLabels(labels ...string) *Issue {
	cp := *i
	cp.Labels = UnionLabels(i.Labels, labels)
	cp.Links = slices.Clone(i.Links)
	return &cp
}

// ProjectOf extracts the project prefix from an issue key.
// Returns "" when the key has no "-" separator.
func ProjectOf(key string) string {
	if idx := strings.LastIndex(key, "-"); idx > 0 {
		return key[:idx]
	}
	return ""
}

// InProject reports whether key belongs to project. An empty project matches
// every key.
func InProject(key, project string) bool {
	if project == "" {
		return true
	}
	return strings.HasPrefix(key, project+"-")
}

// LinkDirection records which side of a link the owning issue is on.
type LinkDirection string

const (
	LinkOutward LinkDirection = "outward"
	LinkInward  LinkDirection = "inward"
)

// Link is one issue link as seen from the owning issue.
type Link struct {
	Type      string        `json:"type"`              // Link type name, e.g. "Blocks", "Cloners"
	Inward    string        `json:"inward,omitempty"`  // e.g. "is cloned by"
	Outward   string        `json:"outward,omitempty"` // e.g. "clones"
	Direction LinkDirection `json:"direction,omitempty"`
	TargetKey string        `json:"target"`
}

// IsClone reports whether the link expresses a clone relationship.
func (l Link) IsClone() bool {
	for _, s := range []string{l.Type, l.Inward, l.Outward} {
		if strings.Contains(strings.ToLower(s), "clone") {
			return true
		}
	}
	return false
}

// Relationship describes how a traversal node was reached.
type Relationship string

const (
	RelRoot   Relationship = "root"
	RelChild  Relationship = "child"
	RelLinked Relationship = "linked"
)

// TraversalNode is one visited issue in a hierarchy walk.
type TraversalNode struct {
	Issue        *Issue       `json:"issue"`
	Depth        int          `json:"depth"` // 0 = root
	Relationship Relationship `json:"relationship"`
	ParentKey    string       `json:"parent_key,omitempty"` // Empty for the root

	// Last is a display hint: no unvisited sibling remained in the parent's
	// expansion list when this node was emitted. Nodes stream before their
	// subtree is walked, so a sibling reached first through a link inside
	// the subtree still counts as remaining.
	Last bool `json:"-"`
}

// IsRoot reports whether the node is the walk's root.
func (n *TraversalNode) IsRoot() bool {
	return n.Relationship == RelRoot
}

// UnionLabels returns base followed by every label in extra that base does
// not already contain. Order is preserved; duplicates are dropped.
func UnionLabels(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, l := range list {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// MissingLabels returns the labels of want that are absent from have,
// in want's order.
func MissingLabels(want, have []string) []string {
	var missing []string
	for _, l := range want {
		if !slices.Contains(have, l) && !slices.Contains(missing, l) {
			missing = append(missing, l)
		}
	}
	return missing
}
