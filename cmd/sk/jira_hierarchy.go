package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sidekick-cli/sidekick/internal/config"
	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/types"
	"github.com/sidekick-cli/sidekick/internal/ui"
)

var jiraRoadmapHierarchyCmd = &cobra.Command{
	Use:   "roadmap-hierarchy <root> [project] [issue-type]",
	Short: "Print the issue tree below a roadmap item",
	Long: `Walk the hierarchy below a root issue depth-first and print each issue
as soon as it is read. Children are drawn with ├─ / └─ and linked issues
with ├~> / └~>.

project restricts which issues are expanded (the root always is).
issue-type only filters what is printed: issues of other types are still
walked so matching issues below them are found.`,
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		excludeClones, _ := cmd.Flags().GetBool("exclude-clones")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		skipErrors, _ := cmd.Flags().GetBool("skip-errors")

		opts := hierarchy.Options{
			MaxDepth:        maxDepth,
			ExcludeClones:   excludeClones,
			SkipFetchErrors: skipErrors,
			OnWarning:       func(msg string) { WarnError("%s", msg) },
		}
		if opts.MaxDepth <= 0 {
			opts.MaxDepth = config.GetInt(config.KeyHierarchyMaxDepth)
		}
		if len(args) > 1 {
			opts.Project = projectArg(args[1])
		}
		if len(args) > 2 {
			opts.IssueType = args[2]
		}

		root := issueKeyArg(args[0])
		t := newTracker()
		if structuredOutput() {
			nodes, err := hierarchy.New(t).Collect(rootCtx, root, opts)
			if err != nil {
				fail(err)
			}
			outputStructured(cmd.OutOrStdout(), hierarchyReport{Root: root, Nodes: nodes, Total: len(nodes)})
			return
		}
		if _, err := printHierarchy(rootCtx, cmd.OutOrStdout(), t, root, opts); err != nil {
			fail(err)
		}
	},
}

func init() {
	jiraRoadmapHierarchyCmd.Flags().Bool("exclude-clones", false, "Do not follow clone links")
	jiraRoadmapHierarchyCmd.Flags().Int("max-depth", 0, "Deepest level to walk (default from HIERARCHY_MAX_DEPTH, 10)")
	jiraRoadmapHierarchyCmd.Flags().Bool("skip-errors", false, "Warn and continue when a child or link lookup fails")
	jiraCmd.AddCommand(jiraRoadmapHierarchyCmd)
}

// hierarchyReport is the structured form of roadmap-hierarchy.
type hierarchyReport struct {
	Root  string                 `json:"root"`
	Nodes []*types.TraversalNode `json:"nodes"`
	Total int                    `json:"total"`
}

func hierarchyHeader(root string, opts hierarchy.Options) string {
	projectStr := " (across all projects)"
	if opts.Project != "" {
		projectStr = " in " + opts.Project
	}
	typeStr := ""
	if opts.IssueType != "" {
		typeStr = fmt.Sprintf(" (filtered to %s)", opts.IssueType)
	}
	return fmt.Sprintf("Roadmap hierarchy for %s%s%s:\n", root, projectStr, typeStr)
}

// printHierarchy streams the tree below root to w and returns the number of
// issues printed. The header is written with the first issue, so a root that
// cannot be read produces no output.
func printHierarchy(ctx context.Context, w io.Writer, t hierarchy.Tracker, root string, opts hierarchy.Options) (int, error) {
	var tree ui.Tree
	count := 0
	for node, err := range hierarchy.New(t).Walk(ctx, root, opts) {
		if err != nil {
			if count > 0 {
				fmt.Fprintf(w, "\nTotal: %d issues (incomplete)\n", count)
			}
			return count, err
		}
		if count == 0 {
			fmt.Fprintln(w, hierarchyHeader(root, opts))
		}
		prefix := tree.Prefix(node.Depth, node.Relationship == types.RelLinked, node.Last)
		fmt.Fprintln(w, ui.RenderMuted(prefix)+formatIssueLine(node.Issue))
		count++
	}
	if count == 0 {
		// Only reachable when the type filter excluded every issue.
		fmt.Fprintln(w, hierarchyHeader(root, opts))
	}
	fmt.Fprintf(w, "\nTotal: %d issues\n", count)
	return count, nil
}
