package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sidekick-cli/sidekick/internal/config"
	"github.com/sidekick-cli/sidekick/internal/jira"
	"github.com/sidekick-cli/sidekick/internal/types"
	"github.com/sidekick-cli/sidekick/internal/ui"
)

// formatIssueLine renders the one-line microformat used by every list:
//
//	KEY: summary [status] (assignee) [label, label]
func formatIssueLine(issue *types.Issue) string {
	status := issue.Status
	if status == "" {
		status = "Unknown"
	}
	assignee := issue.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	line := fmt.Sprintf("%s: %s [%s] (%s)", issue.Key, issue.Summary, status, assignee)
	if len(issue.Labels) > 0 {
		line += " [" + strings.Join(issue.Labels, ", ") + "]"
	}
	return line
}

func printIssueLines(w io.Writer, issues []*types.Issue) {
	for _, issue := range issues {
		fmt.Fprintln(w, formatIssueLine(issue))
	}
}

// printIssueDetail renders the get-issue view. Long descriptions are
// shortened unless full is set.
func printIssueDetail(w io.Writer, issue *types.Issue, full bool) {
	fmt.Fprintf(w, "%s: %s\n", ui.RenderKey(issue.Key), issue.Summary)

	status := issue.Status
	if status == "" {
		status = "Unknown"
	}
	fmt.Fprintf(w, "  Status: %s\n", ui.RenderStatus(status))

	assignee := issue.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	fmt.Fprintf(w, "  Assignee: %s\n", assignee)

	if len(issue.Labels) > 0 {
		fmt.Fprintf(w, "  Labels: %s\n", strings.Join(issue.Labels, ", "))
	}
	if issue.IssueType != "" {
		fmt.Fprintf(w, "  Type: %s\n", issue.IssueType)
	}
	if issue.ParentKey != "" {
		fmt.Fprintf(w, "  Parent: %s\n", issue.ParentKey)
	}
	if !issue.Updated.IsZero() {
		fmt.Fprintf(w, "  Updated: %s\n", issue.Updated.Local().Format("2006-01-02 15:04"))
	}
	if issue.URL != "" {
		fmt.Fprintf(w, "  URL: %s\n", ui.RenderMuted(issue.URL))
	}
	for _, link := range issue.Links {
		fmt.Fprintf(w, "  Link: %s %s\n", linkVerb(link), link.TargetKey)
	}

	desc := strings.TrimSpace(issue.Description)
	if desc == "" {
		return
	}
	if !full {
		desc = ui.TruncateLines(desc, ui.DefaultMaxLines, ui.DefaultContextLines)
	}
	rendered := ui.RenderMarkdown(desc)
	fmt.Fprintf(w, "\n%s\n%s", ui.RenderCategory("Description"), rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(w)
	}
}

// linkVerb phrases a link from the owning issue's side, e.g. "blocks".
func linkVerb(link types.Link) string {
	verb := link.Outward
	if link.Direction == types.LinkInward {
		verb = link.Inward
	}
	if verb == "" {
		verb = strings.ToLower(link.Type)
	}
	return verb
}

// projectArg maps the "no project" spellings to "".
func projectArg(s string) string {
	switch strings.TrimSpace(s) {
	case "", "None", "none":
		return ""
	}
	return strings.TrimSpace(s)
}

// issueKeyArg turns a key or browse URL argument into an issue key. A browse
// URL of another Jira site is accepted with a warning.
func issueKeyArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "/browse/") {
		site := config.GetString(config.KeyAtlassianURL)
		if site == "" {
			site = config.GetString(config.KeyJiraURL)
		}
		if !jira.IsBrowseURL(arg, site) {
			WarnError("%s is not on %s; using its issue key", arg, site)
		}
	}
	return jira.NormalizeKey(arg)
}
