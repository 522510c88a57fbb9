package jira

import (
	"fmt"
	"strings"
	"time"
)

// IsBrowseURL checks if ref is a browse URL of the configured Jira instance.
// It validates both the URL structure (/browse/PROJECT-123) and optionally the host.
func IsBrowseURL(ref, jiraURL string) bool {
	// Must contain /browse/ pattern
	if !strings.Contains(ref, "/browse/") {
		return false
	}

	// If jiraURL is provided, validate the host matches
	if jiraURL != "" {
		jiraURL = strings.TrimSuffix(jiraURL, "/")
		if !strings.HasPrefix(ref, jiraURL) {
			return false
		}
	}

	return true
}

// ExtractKey extracts the issue key from a browse URL.
// For example, "https://company.atlassian.net/browse/PROJ-123?focused=1" returns "PROJ-123".
func ExtractKey(ref string) string {
	idx := strings.LastIndex(ref, "/browse/")
	if idx == -1 {
		return ""
	}
	key := ref[idx+len("/browse/"):]
	if end := strings.IndexAny(key, "/?#"); end >= 0 {
		key = key[:end]
	}
	return key
}

// NormalizeKey turns a command-line argument into an issue key. Browse URLs
// are reduced to their key and keys are upper-cased.
func NormalizeKey(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "/browse/") {
		arg = ExtractKey(arg)
	}
	return strings.ToUpper(arg)
}

// BrowseURL returns the web URL of key on the Jira instance at baseURL.
func BrowseURL(baseURL, key string) string {
	if baseURL == "" || key == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/browse/" + key
}

// ParseTimestamp parses Jira's timestamp format into a time.Time.
// Jira uses ISO 8601 with timezone: 2024-01-15T10:30:00.000+0000 or 2024-01-15T10:30:00.000Z
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	// Try common formats
	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", ts)
}
