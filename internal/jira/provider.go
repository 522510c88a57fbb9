package jira

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sidekick-cli/sidekick/internal/debug"
	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/types"
)

// Provider adapts a Client to hierarchy.Tracker.
type Provider struct {
	Client *Client
}

var _ hierarchy.Tracker = (*Provider)(nil)

// NewProvider creates a provider backed by c.
func NewProvider(c *Client) *Provider {
	return &Provider{Client: c}
}

// GetIssue fetches key. A 404 is reported as *hierarchy.NotFoundError.
func (p *Provider) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	issue, err := p.Client.GetIssue(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, &hierarchy.NotFoundError{Key: key}
		}
		return nil, err
	}
	return p.ToIssue(issue), nil
}

// GetIssues fetches keys with "key IN (...)" searches, one per page of keys.
// Jira rejects a key search naming a deleted or inaccessible key with a 400;
// such a batch is retried key by key so that only the bad keys go missing.
func (p *Provider) GetIssues(ctx context.Context, keys []string) ([]*types.Issue, error) {
	size := p.Client.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	var out []*types.Issue
	for start := 0; start < len(keys); start += size {
		chunk := keys[start:min(start+size, len(keys))]
		found, err := p.Client.SearchIssues(ctx, KeysJQL(chunk), len(chunk))
		if err != nil {
			if !hasStatus(err, http.StatusBadRequest) {
				return out, err
			}
			debug.Logf("Debug: batch lookup of %d keys rejected, falling back to single lookups\n", len(chunk))
			issues, err := p.getEach(ctx, chunk)
			out = append(out, issues...)
			if err != nil {
				return out, err
			}
			continue
		}
		for i := range found {
			out = append(out, p.ToIssue(&found[i]))
		}
	}
	return out, nil
}

func (p *Provider) getEach(ctx context.Context, keys []string) ([]*types.Issue, error) {
	var out []*types.Issue
	for _, key := range keys {
		issue, err := p.Client.GetIssue(ctx, key)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return out, err
		}
		out = append(out, p.ToIssue(issue))
	}
	return out, nil
}

// QueryByParent returns the children of parentKey, optionally restricted to
// project.
func (p *Provider) QueryByParent(ctx context.Context, parentKey, project string) ([]*types.Issue, error) {
	found, err := p.Client.SearchIssues(ctx, ParentJQL(parentKey, project), 0)
	if err != nil {
		return nil, fmt.Errorf("children of %s: %w", parentKey, err)
	}
	return p.convert(found), nil
}

// QueryByLabel returns up to max issues carrying label.
func (p *Provider) QueryByLabel(ctx context.Context, label, project string, max int) ([]*types.Issue, error) {
	found, err := p.Client.SearchIssues(ctx, LabelJQL(label, project), max)
	if err != nil {
		return nil, err
	}
	return p.convert(found), nil
}

// Search runs a raw JQL query.
func (p *Provider) Search(ctx context.Context, jql string, max int) ([]*types.Issue, error) {
	found, err := p.Client.SearchIssues(ctx, jql, max)
	if err != nil {
		return nil, err
	}
	return p.convert(found), nil
}

// AddLabels adds labels without touching the others of the issue.
func (p *Provider) AddLabels(ctx context.Context, key string, labels []string) error {
	return p.Client.AddLabels(ctx, key, labels)
}

// RemoveLabel removes one label from key.
func (p *Provider) RemoveLabel(ctx context.Context, key, label string) error {
	return p.Client.RemoveLabel(ctx, key, label)
}

// UpdateIssue sets fields on key. A 404 is reported as *hierarchy.NotFoundError.
func (p *Provider) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	if err := p.Client.UpdateIssue(ctx, key, fields); err != nil {
		if IsNotFound(err) {
			return &hierarchy.NotFoundError{Key: key}
		}
		return err
	}
	return nil
}

func (p *Provider) convert(found []Issue) []*types.Issue {
	out := make([]*types.Issue, 0, len(found))
	for i := range found {
		out = append(out, p.ToIssue(&found[i]))
	}
	return out
}

// ToIssue converts an API issue into the tracker-neutral snapshot.
func (p *Provider) ToIssue(ji *Issue) *types.Issue {
	f := ji.Fields
	issue := &types.Issue{
		Key:         ji.Key,
		Summary:     f.Summary,
		Description: DescriptionToPlainText(f.Description),
		Labels:      f.Labels,
		URL:         BrowseURL(p.Client.URL, ji.Key),
	}
	if f.Status != nil {
		issue.Status = f.Status.Name
	}
	if f.Assignee != nil {
		issue.Assignee = f.Assignee.DisplayName
	}
	if f.IssueType != nil {
		issue.IssueType = f.IssueType.Name
	}
	if f.Project != nil {
		issue.ProjectKey = f.Project.Key
	}
	if f.Parent != nil {
		issue.ParentKey = f.Parent.Key
	}
	if t, err := ParseTimestamp(f.Updated); err == nil {
		issue.Updated = t
	}

	for _, l := range f.IssueLinks {
		link := types.Link{Type: l.Type.Name, Inward: l.Type.Inward, Outward: l.Type.Outward}
		switch {
		case l.OutwardIssue != nil:
			link.Direction = types.LinkOutward
			link.TargetKey = l.OutwardIssue.Key
		case l.InwardIssue != nil:
			link.Direction = types.LinkInward
			link.TargetKey = l.InwardIssue.Key
		default:
			continue
		}
		issue.Links = append(issue.Links, link)
	}
	return issue
}
