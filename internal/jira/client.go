package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sidekick-cli/sidekick/internal/debug"
)

const (
	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the maxResults requested per search page.
	DefaultPageSize = 100

	retryMaxElapsed = 30 * time.Second
)

// searchFields is the default set of fields to request in search/get queries.
const searchFields = "summary,description,status,issuetype,project,assignee,labels,updated,parent,issuelinks"

// Client provides HTTP access to a Jira instance.
type Client struct {
	URL        string
	Username   string
	APIToken   string
	HTTPClient *http.Client
	PageSize   int

	// newBackoff returns the retry policy for one request.
	newBackoff func() backoff.BackOff
	calls      atomic.Int64
}

// NewClient creates a new Jira client. Requests are traced through otelhttp.
func NewClient(url, username, apiToken string) *Client {
	return &Client{
		URL:      strings.TrimSuffix(url, "/"),
		Username: username,
		APIToken: apiToken,
		HTTPClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		PageSize:   DefaultPageSize,
		newBackoff: newRetryBackoff,
	}
}

func newRetryBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// APICalls returns the number of HTTP requests sent so far, retries included.
func (c *Client) APICalls() int64 {
	return c.calls.Load()
}

// GetIssue fetches a single Jira issue by key (e.g., "PROJ-123").
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s", c.URL, url.PathEscape(key), searchFields)

	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("parse issue response: %w", err)
	}

	return &issue, nil
}

// SearchIssues queries Jira using JQL, following page tokens until max
// issues were collected. max <= 0 returns every match.
func (c *Client) SearchIssues(ctx context.Context, jql string, max int) ([]Issue, error) {
	var allIssues []Issue
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	token := ""

	for {
		want := pageSize
		if max > 0 && max-len(allIssues) < want {
			want = max - len(allIssues)
		}
		params := url.Values{
			"jql":        {jql},
			"fields":     {searchFields},
			"maxResults": {strconv.Itoa(want)},
		}
		if token != "" {
			params.Set("nextPageToken", token)
		}

		apiURL := fmt.Sprintf("%s/rest/api/3/search/jql?%s", c.URL, params.Encode())

		body, err := c.doRequest(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parse search response: %w", err)
		}

		allIssues = append(allIssues, result.Issues...)

		if result.IsLast || result.NextPageToken == "" || len(result.Issues) == 0 {
			break
		}
		if max > 0 && len(allIssues) >= max {
			break
		}
		token = result.NextPageToken
	}

	if max > 0 && len(allIssues) > max {
		allIssues = allIssues[:max]
	}
	return allIssues, nil
}

// UpdateIssue updates an existing Jira issue by key.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	return c.put(ctx, key, map[string]interface{}{"fields": fields})
}

// EditLabels adds and removes labels through update operations, leaving
// every other label of the issue untouched.
func (c *Client) EditLabels(ctx context.Context, key string, add, remove []string) error {
	var ops []map[string]string
	for _, l := range add {
		ops = append(ops, map[string]string{"add": l})
	}
	for _, l := range remove {
		ops = append(ops, map[string]string{"remove": l})
	}
	if len(ops) == 0 {
		return nil
	}
	return c.put(ctx, key, map[string]interface{}{
		"update": map[string]interface{}{"labels": ops},
	})
}

// AddLabels adds labels to an issue.
func (c *Client) AddLabels(ctx context.Context, key string, labels []string) error {
	return c.EditLabels(ctx, key, labels, nil)
}

// RemoveLabel removes one label from an issue.
func (c *Client) RemoveLabel(ctx context.Context, key, label string) error {
	return c.EditLabels(ctx, key, nil, []string{label})
}

func (c *Client) put(ctx context.Context, key string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal update request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s", c.URL, url.PathEscape(key))

	if _, err := c.doRequest(ctx, "PUT", apiURL, data); err != nil {
		return fmt.Errorf("update issue %s: %w", key, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from Jira.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// isRetryableStatus reports gateway failures worth retrying. 429 is not
// retried here.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doRequest executes an authenticated HTTP request and returns the response
// body. Transport failures and gateway errors are retried with exponential
// backoff.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("jira URL not configured")
	}
	if c.APIToken == "" {
		return nil, fmt.Errorf("jira API token not configured")
	}

	bo := c.newBackoff
	if bo == nil {
		bo = newRetryBackoff
	}

	var respBody []byte
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		respBody, err = c.send(ctx, method, apiURL, body)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !isRetryableStatus(apiErr.StatusCode) {
			return backoff.Permanent(err)
		}
		debug.Logf("Debug: %s %s failed (attempt %d): %v\n", method, apiURL, attempt, err)
		return err
	}, backoff.WithContext(bo(), ctx))
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

// send performs one attempt.
func (c *Client) send(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sidekick/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.calls.Add(1)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// PUT returns 204 No Content on success
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

// setAuth sets the appropriate authentication header on the request.
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}
}

// DescriptionToPlainText extracts plain text from Jira's ADF (Atlassian Document Format).
// Jira v3 API returns descriptions as ADF JSON, not plain text.
func DescriptionToPlainText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Type != "doc" {
		// Not ADF - treat as plain text string
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	var parts []string
	for _, block := range doc.Content {
		if text := block.text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// text concatenates the text of n and its descendants. List items and
// nested paragraphs are separated by newlines.
func (n adfNode) text() string {
	if n.Text != "" {
		return n.Text
	}
	var b strings.Builder
	for i, child := range n.Content {
		if i > 0 && (child.Type == "listItem" || child.Type == "paragraph") {
			b.WriteString("\n")
		}
		if child.Type == "listItem" {
			b.WriteString("- ")
		}
		b.WriteString(child.text())
	}
	return b.String()
}

// PlainTextToADF converts plain text to Jira's ADF (Atlassian Document Format).
func PlainTextToADF(text string) json.RawMessage {
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, "\n")
	var content []interface{}
	for _, para := range paragraphs {
		if para == "" {
			content = append(content, map[string]interface{}{
				"type":    "paragraph",
				"content": []interface{}{},
			})
			continue
		}
		content = append(content, map[string]interface{}{
			"type": "paragraph",
			"content": []interface{}{
				map[string]interface{}{
					"type": "text",
					"text": para,
				},
			},
		})
	}

	doc := map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": content,
	}

	data, _ := json.Marshal(doc)
	return data
}
