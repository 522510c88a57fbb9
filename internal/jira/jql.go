package jira

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var orderByRe = regexp.MustCompile(`(?i)\border\s+by\b`)

// KeysJQL matches exactly the given issue keys.
func KeysJQL(keys []string) string {
	if len(keys) == 1 {
		return "key = " + keys[0]
	}
	return "key IN (" + strings.Join(keys, ", ") + ")"
}

// ParentJQL matches the children of parentKey, optionally within project.
func ParentJQL(parentKey, project string) string {
	jql := "parent = " + parentKey
	if project != "" {
		jql += " AND project = " + project
	}
	return jql
}

// LabelJQL matches issues carrying label, optionally within project.
func LabelJQL(label, project string) string {
	jql := "labels = " + Quote(label)
	if project != "" {
		jql = "project = " + project + " AND " + jql
	}
	return jql
}

// UpdatedSinceJQL restricts jql to issues updated at or after since. A
// trailing ORDER BY clause stays at the end.
func UpdatedSinceJQL(jql string, since time.Time) string {
	clause := fmt.Sprintf("updated >= %s", Quote(since.Format("2006-01-02 15:04")))
	where, order := splitOrderBy(jql)
	if where != "" {
		clause = "(" + where + ") AND " + clause
	}
	if order != "" {
		clause += " " + order
	}
	return clause
}

// splitOrderBy separates the last ORDER BY clause from the filter part of jql.
func splitOrderBy(jql string) (where, order string) {
	locs := orderByRe.FindAllStringIndex(jql, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(jql), ""
	}
	i := locs[len(locs)-1][0]
	return strings.TrimSpace(jql[:i]), strings.TrimSpace(jql[i:])
}

// Quote returns s as a JQL string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
