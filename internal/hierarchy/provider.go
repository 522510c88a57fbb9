// Package hierarchy walks parent/child and issue-link relationships of a
// tracker, starting from one root issue.
//
// The walk is depth-first pre-order, cycle-safe and depth-bounded. It is
// exposed as a pull-based iterator so callers can stop early without the
// walker issuing further requests.
package hierarchy

import (
	"context"

	"github.com/sidekick-cli/sidekick/internal/types"
)

// Provider is the read side of an issue tracker as needed by the walker.
type Provider interface {
	// GetIssue fetches one issue by key. A missing issue is reported as a
	// *NotFoundError.
	GetIssue(ctx context.Context, key string) (*types.Issue, error)

	// GetIssues fetches many issues in one batch. Keys that do not resolve
	// are simply absent from the result.
	GetIssues(ctx context.Context, keys []string) ([]*types.Issue, error)

	// QueryByParent returns the direct children of parentKey, optionally
	// restricted to one project.
	QueryByParent(ctx context.Context, parentKey, project string) ([]*types.Issue, error)
}

// LabelWriter is the write side used by label propagation.
type LabelWriter interface {
	// AddLabels adds labels to an issue without touching its other labels.
	AddLabels(ctx context.Context, key string, labels []string) error
}

// Tracker combines read and write access.
type Tracker interface {
	Provider
	LabelWriter
}
