package roadmap

import (
	"slices"

	"github.com/sidekick-cli/sidekick/internal/types"
)

// maxLabels caps how many ancestry codes an issue carries.
const maxLabels = 3

// inheritDepth is the depth from which issues take their parent's set as is.
const inheritDepth = 4

// Planner computes the label set of each node of a walk. Nodes must be
// passed in pre-order, so that a node's parent has always been planned.
type Planner struct {
	family  string
	codes   map[string]Code     // own codes of the root's family
	parents map[string]string   // key -> key it was reached from
	labels  map[string][]string // computed sets
}

// NewPlanner creates a planner for a hierarchy rooted at an issue coded root.
// Codes outside root's family are ignored.
func NewPlanner(root Code) *Planner {
	return &Planner{
		family:  root.Family(),
		codes:   make(map[string]Code),
		parents: make(map[string]string),
		labels:  make(map[string][]string),
	}
}

// Plan returns the labels node should carry, and whether they were taken
// unchanged from its parent.
func (p *Planner) Plan(node *types.TraversalNode) (labels []string, inherited bool) {
	key := node.Issue.Key
	if node.ParentKey != "" {
		p.parents[key] = node.ParentKey
	}

	code, ok := ParseCode(node.Issue.Summary)
	own := ok && code.Family() == p.family
	if own {
		p.codes[key] = code
	}

	if parentSet, known := p.labels[node.ParentKey]; known && (!own || node.Depth >= inheritDepth) {
		labels, inherited = slices.Clone(parentSet), true
	} else {
		labels = p.ancestry(key)
	}
	p.labels[key] = labels
	return labels, inherited
}

// ancestry returns the distinct codes from the root down to key, collapsed to the
// root, the nearest coded ancestor and key's own code when longer than
// maxLabels.
func (p *Planner) ancestry(key string) []string {
	var chain []string
	seen := make(map[string]bool)
	for cur := key; cur != "" && !seen[cur]; cur = p.parents[cur] {
		seen[cur] = true
		if code, ok := p.codes[cur]; ok {
			chain = append(chain, code.Label())
		}
	}
	slices.Reverse(chain)
	chain = slices.Compact(chain)

	if n := len(chain); n > maxLabels {
		return []string{chain[0], chain[n-2], chain[n-1]}
	}
	if chain == nil {
		return []string{}
	}
	return chain
}
