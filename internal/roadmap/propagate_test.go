package roadmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/hierarchy/hierarchytest"
	"github.com/sidekick-cli/sidekick/internal/roadmap"
	"github.com/sidekick-cli/sidekick/internal/types"
)

func issue(key, summary, parent string, labels ...string) *types.Issue {
	return &types.Issue{Key: key, Summary: summary, ParentKey: parent, IssueType: "Epic", Labels: labels}
}

// roadmapTree is C1 -> C1.5 -> C1.5.1 -> C1.5.1.1 -> uncoded leaf.
func roadmapTree() *hierarchytest.Tracker {
	return hierarchytest.New(
		issue("DBX-1", "C1 Reliability", ""),
		issue("DBX-2", "C1.5 Search", "DBX-1"),
		issue("DBX-3", "C1.5.1 Ranking", "DBX-2"),
		issue("DBX-4", "C1.5.1.1 Boosts", "DBX-3"),
		issue("DBX-5", "Tune weights", "DBX-4"),
	)
}

func run(t *testing.T, tr *hierarchytest.Tracker, opts roadmap.Options) (*roadmap.Result, []roadmap.PlanEntry, []string) {
	t.Helper()
	var entries []roadmap.PlanEntry
	var warnings []string
	p := roadmap.NewPropagator(tr)
	p.OnEntry = func(e roadmap.PlanEntry) { entries = append(entries, e) }
	p.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	result, err := p.Run(context.Background(), "DBX-1", opts)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result, entries, warnings
}

func TestRunPrefixDepthRule(t *testing.T) {
	tr := roadmapTree()
	result, entries, _ := run(t, tr, roadmap.Options{})

	assert.Equal(t, roadmap.Result{Processed: 5, Labeled: 5}, *result)
	assert.Equal(t, [][]string{{"c1"}}, tr.LabelCalls["DBX-1"])
	assert.Equal(t, [][]string{{"c1", "c1.5"}}, tr.LabelCalls["DBX-2"])
	assert.Equal(t, [][]string{{"c1", "c1.5", "c1.5.1"}}, tr.LabelCalls["DBX-3"])
	assert.Equal(t, [][]string{{"c1", "c1.5.1", "c1.5.1.1"}}, tr.LabelCalls["DBX-4"])
	assert.Equal(t, [][]string{{"c1", "c1.5.1", "c1.5.1.1"}}, tr.LabelCalls["DBX-5"])

	require.Len(t, entries, 5)
	assert.True(t, entries[4].Inherited)
	assert.True(t, entries[4].Applied)
	assert.Equal(t, 4, entries[4].Depth)
}

func TestRunIsIdempotent(t *testing.T) {
	tr := roadmapTree()
	run(t, tr, roadmap.Options{})
	writes := tr.CallCount("label:")

	result, entries, _ := run(t, tr, roadmap.Options{})
	assert.Equal(t, 0, result.Labeled)
	assert.Equal(t, result.Processed, result.Skipped)
	assert.Equal(t, 5, result.Skipped)
	assert.Equal(t, writes, tr.CallCount("label:"))
	for _, e := range entries {
		assert.True(t, e.Skipped(), e.Key)
	}
}

func TestRunAddsOnlyMissingLabels(t *testing.T) {
	tr := hierarchytest.New(
		issue("DBX-1", "C1 Reliability", "", "c1"),
		issue("DBX-2", "C1.5 Search", "DBX-1", "team-search", "c1"),
	)
	result, _, _ := run(t, tr, roadmap.Options{})

	assert.Equal(t, roadmap.Result{Processed: 2, Labeled: 1, Skipped: 1}, *result)
	assert.Equal(t, [][]string{{"c1.5"}}, tr.LabelCalls["DBX-2"])
	assert.Equal(t, []string{"team-search", "c1", "c1.5"}, tr.Issue("DBX-2").Labels)
}

func TestRunCrossFamilyExclusion(t *testing.T) {
	tr := hierarchytest.New(
		issue("DBX-1", "C1 Reliability", ""),
		issue("DBX-2", "M7 Launch campaign", "DBX-1"),
	)
	run(t, tr, roadmap.Options{})

	assert.Equal(t, [][]string{{"c1"}}, tr.LabelCalls["DBX-2"])
	assert.NotContains(t, tr.Issue("DBX-2").Labels, "m7")
}

func TestRunCloneExclusion(t *testing.T) {
	root := issue("DBX-1", "C1 Reliability", "")
	root.Links = []types.Link{
		{Type: "Cloners", Inward: "is cloned by", Outward: "clones", TargetKey: "DBX-9"},
		{Type: "Relates", Inward: "relates to", Outward: "relates to", TargetKey: "DBX-8"},
	}
	tr := hierarchytest.New(
		root,
		issue("DBX-8", "C1.8 Related", ""),
		issue("DBX-9", "C1 Reliability (copy)", ""),
	)
	_, entries, _ := run(t, tr, roadmap.Options{})

	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"DBX-1", "DBX-8"}, keys)
	assert.Empty(t, tr.LabelCalls["DBX-9"])
	assert.Equal(t, [][]string{{"c1", "c1.8"}}, tr.LabelCalls["DBX-8"])
}

func TestRunDryRunWritesNothing(t *testing.T) {
	tr := roadmapTree()
	result, entries, _ := run(t, tr, roadmap.Options{DryRun: true})

	assert.Equal(t, roadmap.Result{Processed: 5, Labeled: 5}, *result)
	assert.Equal(t, 0, tr.CallCount("label:"))
	require.Len(t, entries, 5)
	assert.Equal(t, []string{"c1", "c1.5"}, entries[1].Missing)
	assert.False(t, entries[1].Applied)
}

func TestRunLimit(t *testing.T) {
	tr := roadmapTree()
	result, entries, _ := run(t, tr, roadmap.Options{Limit: 2})

	assert.Equal(t, 2, result.Processed)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, tr.CallCount("label:"))
	// The walk stopped at the second issue, so DBX-2 was never expanded.
	assert.Equal(t, 1, tr.CallCount("children:"))
}

func TestRunWriteErrorContinues(t *testing.T) {
	tr := roadmapTree()
	tr.LabelErr["DBX-2"] = errors.New("HTTP 403")
	result, entries, warnings := run(t, tr, roadmap.Options{})

	assert.Equal(t, roadmap.Result{Processed: 4, Labeled: 4, Errors: 1}, *result)
	assert.Equal(t, result.Labeled+result.Skipped, result.Processed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "DBX-2")

	var we *roadmap.WriteError
	require.ErrorAs(t, entries[1].Err, &we)
	assert.Equal(t, "DBX-2", we.Key)
	assert.Equal(t, [][]string{{"c1", "c1.5", "c1.5.1"}}, tr.LabelCalls["DBX-3"])
}

func TestRunRootWithoutCode(t *testing.T) {
	tr := hierarchytest.New(
		issue("DBX-1", "Reliability work", ""),
		issue("DBX-2", "C1.5 Search", "DBX-1"),
	)
	p := roadmap.NewPropagator(tr)

	result, err := p.Run(context.Background(), "DBX-1", roadmap.Options{})
	var ce *roadmap.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "DBX-1", ce.Key)
	assert.Equal(t, roadmap.Result{}, *result)
	assert.Equal(t, 0, tr.CallCount("children:"))
	assert.Equal(t, 0, tr.CallCount("label:"))
}

func TestRunRootNotFound(t *testing.T) {
	p := roadmap.NewPropagator(hierarchytest.New())

	_, err := p.Run(context.Background(), "DBX-1", roadmap.Options{})
	assert.True(t, hierarchy.IsNotFound(err))
}

func TestRunReadFailureAborts(t *testing.T) {
	tr := roadmapTree()
	tr.ParentErr["DBX-2"] = errors.New("HTTP 500")
	p := roadmap.NewPropagator(tr)

	result, err := p.Run(context.Background(), "DBX-1", roadmap.Options{})
	var fe *hierarchy.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, result.Labeled)
}
