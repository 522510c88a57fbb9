// Package jira provides a Jira Cloud REST client and the issue provider
// used by the hierarchy walker.
package jira

import (
	"encoding/json"
	"fmt"
)

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"` // ADF (Atlassian Document Format) or plain text
	Status      *StatusField    `json:"status"`
	IssueType   *IssueTypeField `json:"issuetype"`
	Project     *ProjectField   `json:"project"`
	Assignee    *UserField      `json:"assignee"`
	Labels      []string        `json:"labels"`
	Updated     string          `json:"updated"`
	Parent      *ParentField    `json:"parent"`
	IssueLinks  []IssueLink     `json:"issuelinks"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueTypeField represents a Jira issue type.
type IssueTypeField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectField represents a Jira project.
type ProjectField struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// UserField represents a Jira user.
type UserField struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// ParentField is the parent reference of a child issue.
type ParentField struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// IssueLink is one entry of the issuelinks field. Exactly one of
// InwardIssue and OutwardIssue is set.
type IssueLink struct {
	ID           string        `json:"id"`
	Type         IssueLinkType `json:"type"`
	InwardIssue  *LinkedIssue  `json:"inwardIssue,omitempty"`
	OutwardIssue *LinkedIssue  `json:"outwardIssue,omitempty"`
}

// IssueLinkType names a link type and its two descriptions.
type IssueLinkType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`    // e.g. "Cloners"
	Inward  string `json:"inward"`  // e.g. "is cloned by"
	Outward string `json:"outward"` // e.g. "clones"
}

// LinkedIssue is the abbreviated issue carried inside a link.
type LinkedIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// SearchResult represents a response of the enhanced JQL search endpoint.
type SearchResult struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken"`
	IsLast        bool    `json:"isLast"`
}

// APIError is a non-2xx response from Jira.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.StatusCode, e.Body)
}
