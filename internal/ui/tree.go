package ui

import "strings"

// Tree connectors. Child edges are solid, link edges are wavy.
const (
	TreeChild     = "├─ "
	TreeChildLast = "└─ "
	TreeLink      = "├~> "
	TreeLinkLast  = "└~> "
	TreeGuide     = "│  "
	TreeBlank     = "   "
)

// Tree renders streamed hierarchy nodes as an indented tree. Nodes must be
// fed in depth-first pre-order; the tree keeps one guide per open level so
// lines can be printed as soon as they arrive.
type Tree struct {
	open []bool // open[d]: more siblings are expected at depth d
}

// Prefix returns the guides and connector for a node at depth (root = 0).
// last marks the final sibling in its parent's list, which closes the guide
// for that level. A line is never revised once returned: when a level left
// open receives no further sibling, its guide runs to the last line of the
// subtree above it and stops.
func (t *Tree) Prefix(depth int, linked, last bool) string {
	if depth <= 0 {
		t.open = t.open[:0]
		return ""
	}

	var b strings.Builder
	for d := 1; d < depth; d++ {
		if d < len(t.open) && t.open[d] {
			b.WriteString(TreeGuide)
		} else {
			b.WriteString(TreeBlank)
		}
	}
	switch {
	case linked && last:
		b.WriteString(TreeLinkLast)
	case linked:
		b.WriteString(TreeLink)
	case last:
		b.WriteString(TreeChildLast)
	default:
		b.WriteString(TreeChild)
	}

	for len(t.open) <= depth {
		t.open = append(t.open, false)
	}
	t.open = t.open[:depth+1]
	t.open[depth] = !last
	return b.String()
}
