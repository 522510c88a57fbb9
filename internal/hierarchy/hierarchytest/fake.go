// Package hierarchytest provides an in-memory tracker for tests of code
// built on package hierarchy.
package hierarchytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/types"
)

// Tracker is an in-memory hierarchy.Tracker. Children are returned in the
// order issues were added. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	order  []string
	issues map[string]*types.Issue

	// Injected failures, keyed by issue key.
	ParentErr map[string]error // QueryByParent(key)
	LabelErr  map[string]error // AddLabels(key)
	BatchErr  error            // every GetIssues call

	Calls      []string // "get:KEY", "batch:K1,K2", "children:KEY", "label:KEY"
	LabelCalls map[string][][]string
}

// New creates a tracker holding issues.
func New(issues ...*types.Issue) *Tracker {
	t := &Tracker{
		issues:     make(map[string]*types.Issue),
		ParentErr:  make(map[string]error),
		LabelErr:   make(map[string]error),
		LabelCalls: make(map[string][][]string),
	}
	t.Add(issues...)
	return t
}

// Add stores issues, replacing existing ones with the same key.
func (t *Tracker) Add(issues ...*types.Issue) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, issue := range issues {
		if _, ok := t.issues[issue.Key]; !ok {
			t.order = append(t.order, issue.Key)
		}
		t.issues[issue.Key] = issue
	}
}

// Issue returns the current snapshot of key.
func (t *Tracker) Issue(key string) *types.Issue {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issues[key]
}

// CallCount returns how many recorded calls start with prefix ("get:", ...).
func (t *Tracker) CallCount(prefix string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (t *Tracker) record(call string) {
	t.Calls = append(t.Calls, call)
}

func (t *Tracker) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("get:" + key)
	issue, ok := t.issues[key]
	if !ok {
		return nil, &hierarchy.NotFoundError{Key: key}
	}
	return issue, nil
}

func (t *Tracker) GetIssues(ctx context.Context, keys []string) ([]*types.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(fmt.Sprintf("batch:%v", keys))
	if t.BatchErr != nil {
		return nil, t.BatchErr
	}
	var out []*types.Issue
	for _, key := range keys {
		if issue, ok := t.issues[key]; ok {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (t *Tracker) QueryByParent(ctx context.Context, parentKey, project string) ([]*types.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("children:" + parentKey)
	if err := t.ParentErr[parentKey]; err != nil {
		return nil, err
	}
	var out []*types.Issue
	for _, key := range t.order {
		issue := t.issues[key]
		if issue.ParentKey == parentKey && types.InProject(issue.Key, project) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (t *Tracker) AddLabels(ctx context.Context, key string, labels []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("label:" + key)
	if err := t.LabelErr[key]; err != nil {
		return err
	}
	issue, ok := t.issues[key]
	if !ok {
		return &hierarchy.NotFoundError{Key: key}
	}
	t.LabelCalls[key] = append(t.LabelCalls[key], append([]string(nil), labels...))
	t.issues[key] = issue.WithLabels(labels...)
	return nil
}

// Chain builds n issues PROJ-1 .. PROJ-n, each the parent of the next.
func Chain(project string, n int) []*types.Issue {
	issues := make([]*types.Issue, 0, n)
	for i := 1; i <= n; i++ {
		issue := &types.Issue{
			Key:       fmt.Sprintf("%s-%d", project, i),
			Summary:   fmt.Sprintf("Level %d", i-1),
			IssueType: "Task",
		}
		if i > 1 {
			issue.ParentKey = fmt.Sprintf("%s-%d", project, i-1)
		}
		issues = append(issues, issue)
	}
	return issues
}
