package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidekick-cli/sidekick/internal/types"
)

func node(key, summary, parent string, depth int) *types.TraversalNode {
	rel := types.RelChild
	if parent == "" {
		rel = types.RelRoot
	}
	return &types.TraversalNode{
		Issue:        &types.Issue{Key: key, Summary: summary},
		Depth:        depth,
		Relationship: rel,
		ParentKey:    parent,
	}
}

func TestPlannerDepthRule(t *testing.T) {
	p := NewPlanner("C1")

	steps := []struct {
		node      *types.TraversalNode
		want      []string
		inherited bool
	}{
		{node("DBX-1", "C1 Reliability", "", 0), []string{"c1"}, false},
		{node("DBX-2", "C1.5 Search", "DBX-1", 1), []string{"c1", "c1.5"}, false},
		{node("DBX-3", "C1.5.1 Ranking", "DBX-2", 2), []string{"c1", "c1.5", "c1.5.1"}, false},
		{node("DBX-4", "C1.5.1.1 Boosts", "DBX-3", 3), []string{"c1", "c1.5.1", "c1.5.1.1"}, false},
		{node("DBX-5", "Tune weights", "DBX-4", 4), []string{"c1", "c1.5.1", "c1.5.1.1"}, true},
		{node("DBX-6", "C1.5.1.1.1 Deeper", "DBX-5", 5), []string{"c1", "c1.5.1", "c1.5.1.1"}, true},
	}

	for _, s := range steps {
		got, inherited := p.Plan(s.node)
		assert.Equal(t, s.want, got, s.node.Issue.Key)
		assert.Equal(t, s.inherited, inherited, s.node.Issue.Key)
	}
}

func TestPlannerUncodedIntermediate(t *testing.T) {
	p := NewPlanner("C1")
	p.Plan(node("DBX-1", "C1 Reliability", "", 0))

	got, inherited := p.Plan(node("DBX-2", "Shared infra", "DBX-1", 1))
	assert.Equal(t, []string{"c1"}, got)
	assert.True(t, inherited)

	got, _ = p.Plan(node("DBX-3", "C1.5.1 Ranking", "DBX-2", 2))
	assert.Equal(t, []string{"c1", "c1.5.1"}, got)

	got, _ = p.Plan(node("DBX-4", "C1.5.1.1 Boosts", "DBX-3", 3))
	assert.Equal(t, []string{"c1", "c1.5.1", "c1.5.1.1"}, got)
}

func TestPlannerCrossFamily(t *testing.T) {
	p := NewPlanner("C1")
	p.Plan(node("DBX-1", "C1 Reliability", "", 0))
	p.Plan(node("DBX-2", "C1.2 Storage", "DBX-1", 1))

	got, inherited := p.Plan(node("DBX-3", "M7 Marketing push", "DBX-2", 2))
	assert.Equal(t, []string{"c1", "c1.2"}, got)
	assert.True(t, inherited)

	got, _ = p.Plan(node("DBX-4", "C1.2.3 Compaction", "DBX-3", 3))
	assert.Equal(t, []string{"c1", "c1.2", "c1.2.3"}, got)
}

func TestPlannerResultIsIndependentOfParent(t *testing.T) {
	p := NewPlanner("C1")
	root, _ := p.Plan(node("DBX-1", "C1 Reliability", "", 0))
	child, _ := p.Plan(node("DBX-2", "No code", "DBX-1", 1))

	child[0] = "changed"
	assert.Equal(t, []string{"c1"}, root)
}

func TestPlannerRepeatedCodeIsNotDuplicated(t *testing.T) {
	p := NewPlanner("C1")
	p.Plan(node("DBX-1", "C1 Reliability", "", 0))
	p.Plan(node("DBX-2", "C1.5 Search", "DBX-1", 1))

	got, inherited := p.Plan(node("DBX-3", "C1.5 Search follow-up", "DBX-2", 2))
	assert.Equal(t, []string{"c1", "c1.5"}, got)
	assert.False(t, inherited)

	got, _ = p.Plan(node("DBX-4", "C1.5.2 Facets", "DBX-3", 3))
	assert.Equal(t, []string{"c1", "c1.5", "c1.5.2"}, got)
}
