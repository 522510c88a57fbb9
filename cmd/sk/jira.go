package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidekick-cli/sidekick/internal/config"
	"github.com/sidekick-cli/sidekick/internal/debug"
	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/jira"
	"github.com/sidekick-cli/sidekick/internal/roadmap"
	"github.com/sidekick-cli/sidekick/internal/telemetry"
	"github.com/sidekick-cli/sidekick/internal/timeparsing"
	"github.com/sidekick-cli/sidekick/internal/types"
)

// defaultMaxResults caps list commands when no max is given.
const defaultMaxResults = 50

var jiraCmd = &cobra.Command{
	Use:     "jira",
	GroupID: "trackers",
	Short:   "Jira issue and roadmap commands",
	Long: `Read and edit Jira issues, walk roadmap hierarchies and propagate
roadmap labels.

Issue keys may be given as keys (DBX-1734) or browse URLs
(https://company.atlassian.net/browse/DBX-1734). A project argument of
"None" or "none" means no project restriction.

Examples:
  sk jira get-issue DBX-1734
  sk jira query "project = DBX AND status = 'In Progress'" 20
  sk jira query "project = DBX" --updated-since "3 days ago"
  sk jira roadmap-hierarchy DBX-1734 DBX Epic
  sk jira label-roadmap DBX-1734 DBX --dry-run`,
}

var jiraGetIssueCmd = &cobra.Command{
	Use:   "get-issue <key>",
	Short: "Show one issue in detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		full, _ := cmd.Flags().GetBool("full")
		p := newJiraProvider()

		issue, err := p.GetIssue(rootCtx, issueKeyArg(args[0]))
		if err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), issue)
			return
		}
		printIssueDetail(cmd.OutOrStdout(), issue, full)
	},
}

var jiraGetIssuesBulkCmd = &cobra.Command{
	Use:   "get-issues-bulk <key>...",
	Short: "Show several issues, one line each",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := newJiraProvider()

		keys := make([]string, 0, len(args))
		for _, arg := range args {
			keys = append(keys, issueKeyArg(arg))
		}
		issues, err := p.GetIssues(rootCtx, keys)
		if err != nil {
			fail(err)
		}
		if missing := missingKeys(keys, issues); len(missing) > 0 {
			WarnError("not found: %s", strings.Join(missing, ", "))
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), issues)
			return
		}
		printIssueLines(cmd.OutOrStdout(), issues)
	},
}

var jiraQueryCmd = &cobra.Command{
	Use:   "query <jql> [max]",
	Short: "Search issues with JQL",
	Long: `Search issues with JQL.

--updated-since accepts compact durations (-3d, -12h), dates (2025-01-31),
RFC3339 timestamps and natural language ("yesterday", "3 days ago",
"last monday").`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		since, _ := cmd.Flags().GetString("updated-since")
		max, err := maxArg(args, 1)
		if err != nil {
			FatalError("%v", err)
		}
		jql, err := queryJQL(args[0], since, time.Now())
		if err != nil {
			FatalError("%v", err)
		}

		p := newJiraProvider()
		issues, err := p.Search(rootCtx, jql, max)
		if err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), issues)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d issues:\n", len(issues))
		printIssueLines(cmd.OutOrStdout(), issues)
	},
}

var jiraQueryByParentCmd = &cobra.Command{
	Use:   "query-by-parent <key> [max]",
	Short: "List the children of an issue",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		max, err := maxArg(args, 1)
		if err != nil {
			FatalError("%v", err)
		}
		key := issueKeyArg(args[0])

		p := newJiraProvider()
		issues, err := p.QueryByParent(rootCtx, key, "")
		if err != nil {
			fail(err)
		}
		if len(issues) > max {
			issues = issues[:max]
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), issues)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subtasks of %s (%d issues):\n", key, len(issues))
		printIssueLines(cmd.OutOrStdout(), issues)
	},
}

var jiraQueryByLabelCmd = &cobra.Command{
	Use:   "query-by-label <label> [project] [max]",
	Short: "List issues carrying a label",
	Args:  cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		label, project, max, err := labelQueryArgs(args)
		if err != nil {
			FatalError("%v", err)
		}

		p := newJiraProvider()
		issues, err := p.QueryByLabel(rootCtx, label, project, max)
		if err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), issues)
			return
		}
		projectStr := ""
		if project != "" {
			projectStr = " in " + project
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issues with label '%s'%s (%d issues):\n", label, projectStr, len(issues))
		printIssueLines(cmd.OutOrStdout(), issues)
	},
}

var jiraUpdateIssueCmd = &cobra.Command{
	Use:   "update-issue <key> <fields-json>",
	Short: "Set issue fields from a JSON object",
	Long: `Set issue fields from a JSON object, e.g.

  sk jira update-issue DBX-12 '{"summary": "C1.2 Faster sync"}'

A plain-text "description" is converted to Atlassian Document Format.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := issueKeyArg(args[0])
		fields, err := parseFields(args[1])
		if err != nil {
			FatalError("%v", err)
		}

		p := newJiraProvider()
		if err := p.UpdateIssue(rootCtx, key, fields); err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), map[string]interface{}{"key": key, "updated": true})
			return
		}
		debug.PrintNormal("Updated %s\n", key)
	},
}

var jiraAddLabelCmd = &cobra.Command{
	Use:   "add-label <key> <label>",
	Short: "Add one label to an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, label := issueKeyArg(args[0]), args[1]
		p := newJiraProvider()
		if err := p.AddLabels(rootCtx, key, []string{label}); err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), map[string]interface{}{"key": key, "added": label})
			return
		}
		debug.PrintNormal("Added label '%s' to %s\n", label, key)
	},
}

var jiraRemoveLabelCmd = &cobra.Command{
	Use:   "remove-label <key> <label>",
	Short: "Remove one label from an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, label := issueKeyArg(args[0]), args[1]
		p := newJiraProvider()
		if err := p.RemoveLabel(rootCtx, key, label); err != nil {
			fail(err)
		}
		if structuredOutput() {
			outputStructured(cmd.OutOrStdout(), map[string]interface{}{"key": key, "removed": label})
			return
		}
		debug.PrintNormal("Removed label '%s' from %s\n", label, key)
	},
}

func init() {
	jiraGetIssueCmd.Flags().Bool("full", false, "Show the complete description")
	jiraQueryCmd.Flags().String("updated-since", "", "Only issues updated since this time (e.g. -3d, yesterday, 2025-01-31)")

	jiraCmd.AddCommand(jiraGetIssueCmd)
	jiraCmd.AddCommand(jiraGetIssuesBulkCmd)
	jiraCmd.AddCommand(jiraQueryCmd)
	jiraCmd.AddCommand(jiraQueryByParentCmd)
	jiraCmd.AddCommand(jiraQueryByLabelCmd)
	jiraCmd.AddCommand(jiraUpdateIssueCmd)
	jiraCmd.AddCommand(jiraAddLabelCmd)
	jiraCmd.AddCommand(jiraRemoveLabelCmd)
	rootCmd.AddCommand(jiraCmd)
}

// newJiraProvider builds a provider from the loaded configuration, or exits
// naming the missing settings.
func newJiraProvider() *jira.Provider {
	cfg, err := config.AtlassianConfig()
	if err != nil {
		FatalErrorWithHint(err.Error(),
			"Set them in the environment or in a .env file (see 'sk --help')")
	}

	if used := config.ConfigFileUsed(); used != "" {
		debug.Logf("Debug: loaded configuration from %s\n", used)
	}

	client := jira.NewClient(cfg.URL, cfg.Email, cfg.APIToken)
	if timeout := config.GetDuration(config.KeyJiraTimeout); timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	if size := config.GetInt(config.KeyJiraPageSize); size > 0 {
		client.PageSize = size
	}
	apiClient = client
	return jira.NewProvider(client)
}

// newTracker returns the provider the hierarchy commands read and write
// through, instrumented when telemetry is on.
var newTracker = func() hierarchy.Tracker {
	return telemetry.WrapProvider(newJiraProvider())
}

// fail reports err and exits. Structured output modes get a JSON error
// object on stderr.
func fail(err error) {
	if structuredOutput() {
		outputJSONError(err, errorCode(err))
	}
	FatalError("%v", err)
}

func errorCode(err error) string {
	var (
		notFound *hierarchy.NotFoundError
		cfgErr   *roadmap.ConfigurationError
		fetchErr *hierarchy.FetchError
		apiErr   *jira.APIError
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &apiErr):
		return "api_" + strconv.Itoa(apiErr.StatusCode)
	}
	return ""
}

// maxArg parses the optional max-results argument at args[i].
func maxArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return defaultMaxResults, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("max results must be a positive integer, got %q", args[i])
	}
	return n, nil
}

// labelQueryArgs splits "<label> [project] [max]". A lone numeric second
// argument is the max, not a project.
func labelQueryArgs(args []string) (label, project string, max int, err error) {
	label = args[0]
	max = defaultMaxResults
	rest := args[1:]
	if len(rest) > 0 {
		if _, convErr := strconv.Atoi(rest[len(rest)-1]); convErr == nil {
			if max, err = maxArg(rest, len(rest)-1); err != nil {
				return "", "", 0, err
			}
			rest = rest[:len(rest)-1]
		}
	}
	if len(rest) > 1 {
		return "", "", 0, fmt.Errorf("unexpected argument %q", rest[1])
	}
	if len(rest) == 1 {
		project = projectArg(rest[0])
	}
	return label, project, max, nil
}

// queryJQL applies --updated-since to jql.
func queryJQL(jql, since string, now time.Time) (string, error) {
	if strings.TrimSpace(since) == "" {
		return jql, nil
	}
	t, err := timeparsing.ParseSince(since, now)
	if err != nil {
		return "", fmt.Errorf("--updated-since: %w", err)
	}
	return jira.UpdatedSinceJQL(jql, t), nil
}

// parseFields decodes the update-issue JSON object.
func parseFields(raw string) (map[string]interface{}, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("fields must name at least one field")
	}
	if desc, ok := fields["description"].(string); ok {
		fields["description"] = jira.PlainTextToADF(desc)
	}
	return fields, nil
}

// missingKeys returns the requested keys absent from issues, in request order.
func missingKeys(keys []string, issues []*types.Issue) []string {
	found := make(map[string]bool, len(issues))
	for _, issue := range issues {
		found[issue.Key] = true
	}
	var missing []string
	for _, key := range keys {
		if !found[key] {
			missing = append(missing, key)
		}
	}
	return missing
}
