package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sidekick-cli/sidekick/internal/config"
	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/roadmap"
	"github.com/sidekick-cli/sidekick/internal/ui"
)

var jiraLabelRoadmapCmd = &cobra.Command{
	Use:   "label-roadmap <root> [project]",
	Short: "Add roadmap code labels to every issue below a root",
	Long: `Add roadmap code labels to every issue below a root.

The root summary must start with a roadmap code such as "C1" or "C1.5".
Each issue gets the codes of its coded ancestors (root first), at most
three; issues four or more levels down inherit their parent's labels.
Labels are only ever added. Clone links are not followed.

Examples:
  sk jira label-roadmap DBX-1734 DBX --dry-run
  sk jira label-roadmap DBX-1734 DBX --limit 10 --yes`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		yes, _ := cmd.Flags().GetBool("yes")
		if limit < 0 {
			FatalError("--limit must not be negative")
		}

		root := issueKeyArg(args[0])
		opts := roadmap.Options{
			DryRun:   dryRun,
			Limit:    limit,
			MaxDepth: config.GetInt(config.KeyHierarchyMaxDepth),
		}
		if len(args) > 1 {
			opts.Project = projectArg(args[1])
		}

		if !dryRun && !yes && !structuredOutput() && ui.IsTerminal() && ui.IsInputTerminal() {
			if !confirmLabeling(root, opts) {
				fmt.Fprintln(os.Stderr, "Labeling cancelled.")
				return
			}
		}

		t := newTracker()
		if structuredOutput() {
			report, err := collectLabelReport(rootCtx, t, root, opts)
			outputStructured(cmd.OutOrStdout(), report)
			if err != nil {
				fail(err)
			}
			return
		}
		if _, err := printLabelRun(rootCtx, cmd.OutOrStdout(), t, root, opts); err != nil {
			fail(err)
		}
	},
}

func init() {
	jiraLabelRoadmapCmd.Flags().Bool("dry-run", false, "Show the labels that would be added without writing them")
	jiraLabelRoadmapCmd.Flags().Int("limit", 0, "Stop after this many issues (0 = no limit)")
	jiraLabelRoadmapCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	jiraCmd.AddCommand(jiraLabelRoadmapCmd)
}

func confirmLabeling(root string, opts roadmap.Options) bool {
	scope := "all projects"
	if opts.Project != "" {
		scope = opts.Project
	}
	confirmed := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Add roadmap labels below %s?", root)).
				Description(fmt.Sprintf("Writes labels to issues in %s. Use --dry-run to preview.", scope)).
				Affirmative("Label").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false
		}
		FatalError("confirmation prompt: %v", err)
	}
	return confirmed
}

func labelHeader(root string, opts roadmap.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Labeling roadmap hierarchy for %s", root)
	if opts.Project != "" {
		fmt.Fprintf(&b, " in %s", opts.Project)
	}
	if opts.DryRun {
		b.WriteString(" (DRY RUN)")
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " (limit: %d)", opts.Limit)
	}
	b.WriteString(":\n")
	return b.String()
}

func labelSummary(r *roadmap.Result) string {
	return fmt.Sprintf("Summary: Processed %d issues, labeled %d, skipped %d, %d errors",
		r.Processed, r.Labeled, r.Skipped, r.Errors)
}

// printLabelRun runs the propagator and reports every issue to w as it is
// handled. The summary is printed even when the run stops early.
func printLabelRun(ctx context.Context, w io.Writer, t hierarchy.Tracker, root string, opts roadmap.Options) (*roadmap.Result, error) {
	p := roadmap.NewPropagator(t)
	p.OnWarning = func(msg string) { WarnError("%s", msg) }

	seq := 0
	p.OnEntry = func(e roadmap.PlanEntry) {
		if seq == 0 {
			fmt.Fprintln(w, labelHeader(root, opts))
		}
		seq++
		if opts.DryRun {
			printDryRunEntry(w, e)
		} else {
			printAppliedEntry(w, seq, e)
		}
	}

	result, err := p.Run(ctx, root, opts)
	if seq > 0 {
		fmt.Fprintf(w, "\n%s\n", labelSummary(result))
	}
	return result, err
}

func printDryRunEntry(w io.Writer, e roadmap.PlanEntry) {
	fmt.Fprintf(w, "%s: %s\n", e.Key, ui.TruncateSimple(e.Summary, 60))
	fmt.Fprintf(w, "  Current labels: %s\n", labelList(e.Current))
	if e.Skipped() {
		fmt.Fprintf(w, "  %s Already has correct labels, skipped\n\n", ui.RenderSkipIcon())
		return
	}
	inherited := ""
	if e.Inherited {
		inherited = " (inherited)"
	}
	fmt.Fprintf(w, "  Labels to add: %s%s\n\n", labelList(e.Missing), inherited)
}

func printAppliedEntry(w io.Writer, seq int, e roadmap.PlanEntry) {
	switch {
	case e.Skipped():
		fmt.Fprintf(w, "[%d] %s %s: Skipped (already has correct labels)\n", seq, ui.RenderSkipIcon(), e.Key)
	case e.Err != nil:
		fmt.Fprintf(w, "[%d] %s %s: Failed to add labels %s\n", seq, ui.RenderFailIcon(), e.Key, labelList(e.Missing))
	default:
		var had []string
		for _, l := range e.Computed {
			if !slices.Contains(e.Missing, l) {
				had = append(had, l)
			}
		}
		details := fmt.Sprintf("%d new", len(e.Missing))
		if len(had) > 0 {
			details += ", already had: " + strings.Join(had, ", ")
		}
		if e.Inherited {
			details += ", inherited"
		}
		fmt.Fprintf(w, "[%d] %s %s: Added labels %s (%s)\n", seq, ui.RenderPassIcon(), e.Key, labelList(e.Missing), details)
	}
}

func labelList(labels []string) string {
	return "[" + strings.Join(labels, ", ") + "]"
}

// labelEntry is the structured form of one roadmap.PlanEntry.
type labelEntry struct {
	roadmap.PlanEntry
	Error string `json:"error,omitempty"`
}

// labelReport is the structured form of label-roadmap.
type labelReport struct {
	Root    string          `json:"root"`
	DryRun  bool            `json:"dry_run"`
	Entries []labelEntry    `json:"entries"`
	Result  *roadmap.Result `json:"result"`
	Error   string          `json:"error,omitempty"`
}

func collectLabelReport(ctx context.Context, t hierarchy.Tracker, root string, opts roadmap.Options) (*labelReport, error) {
	report := &labelReport{Root: root, DryRun: opts.DryRun, Entries: []labelEntry{}}
	p := roadmap.NewPropagator(t)
	p.OnWarning = func(msg string) { WarnError("%s", msg) }
	p.OnEntry = func(e roadmap.PlanEntry) {
		entry := labelEntry{PlanEntry: e}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		report.Entries = append(report.Entries, entry)
	}
	result, err := p.Run(ctx, root, opts)
	report.Result = result
	if err != nil {
		report.Error = err.Error()
	}
	return report, err
}
