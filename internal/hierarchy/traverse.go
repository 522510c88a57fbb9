package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sidekick-cli/sidekick/internal/debug"
	"github.com/sidekick-cli/sidekick/internal/types"
)

// DefaultMaxDepth bounds how deep a walk descends below the root.
const DefaultMaxDepth = 10

// Options configures one walk.
type Options struct {
	// Project restricts which child and linked keys are expanded. The root is
	// always walked regardless of its own project.
	Project string

	// IssueType restricts which nodes are emitted. Filtered-out nodes are still
	// expanded so matching descendants below them are reached.
	IssueType string

	// MaxDepth is the deepest level visited (root = 0). Zero or negative
	// means DefaultMaxDepth.
	MaxDepth int

	// ExcludeClones drops clone links entirely: their targets are neither
	// visited nor expanded through that link.
	ExcludeClones bool

	// SkipFetchErrors keeps walking when a children or links fetch fails.
	// The default aborts the walk with a *FetchError.
	SkipFetchErrors bool

	// OnWarning receives skipped failures when SkipFetchErrors is set.
	OnWarning func(msg string)
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Traverser walks issue hierarchies through a Provider.
type Traverser struct {
	Provider Provider
}

// New creates a Traverser reading from p.
func New(p Provider) *Traverser {
	return &Traverser{Provider: p}
}

// Walk returns a lazy sequence of the nodes reachable from rootKey in
// depth-first pre-order: a node is emitted before any of its descendants,
// children before linked issues. Each key is emitted at most once.
//
// A failure ends the sequence with a single (nil, err) pair. Nodes emitted
// before the failure remain valid. Breaking out of the range loop stops the
// walk before any further request is made.
func (t *Traverser) Walk(ctx context.Context, rootKey string, opts Options) iter.Seq2[*types.TraversalNode, error] {
	return func(yield func(*types.TraversalNode, error) bool) {
		w := &walk{
			provider: t.Provider,
			opts:     opts,
			yield:    yield,
			cache:    NewCache(),
			visited:  make(map[string]bool),
			missing:  make(map[string]bool),
		}

		rootKey = strings.TrimSpace(rootKey)
		root, err := w.fetchRoot(ctx, rootKey)
		if err != nil {
			yield(nil, err)
			return
		}
		w.visit(ctx, root, 0, types.RelRoot, "", true)

		hits, misses := w.cache.Stats()
		debug.Logf("Debug: walk from %s visited %d issues (cache %d entries, %d hits, %d misses)\n",
			rootKey, len(w.visited), w.cache.Len(), hits, misses)
	}
}

// Collect drains Walk into a slice. On failure it returns the nodes emitted
// so far together with the error.
func (t *Traverser) Collect(ctx context.Context, rootKey string, opts Options) ([]*types.TraversalNode, error) {
	var nodes []*types.TraversalNode
	for node, err := range t.Walk(ctx, rootKey, opts) {
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// walk is the state of one traversal. visited and missing grow
// monotonically and are never shared between walks.
type walk struct {
	provider Provider
	opts     Options
	yield    func(*types.TraversalNode, error) bool
	cache    *Cache
	visited  map[string]bool
	missing  map[string]bool // keys known not to resolve
}

// descendant is a key scheduled for expansion below the current node.
type descendant struct {
	key string
	rel types.Relationship
}

func (w *walk) fetchRoot(ctx context.Context, key string) (*types.Issue, error) {
	if key == "" {
		return nil, &NotFoundError{Key: key}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issue, err := w.provider.GetIssue(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch root %s: %w", key, err)
	}
	if issue == nil {
		return nil, &NotFoundError{Key: key}
	}
	w.cache.Put(issue)
	return issue, nil
}

// visit emits issue and walks its descendants. It returns false when the
// walk must stop, either because the consumer stopped or a fatal error was
// emitted.
func (w *walk) visit(ctx context.Context, issue *types.Issue, depth int, rel types.Relationship, parentKey string, last bool) bool {
	w.visited[issue.Key] = true

	if w.opts.IssueType == "" || strings.EqualFold(issue.IssueType, w.opts.IssueType) {
		node := &types.TraversalNode{
			Issue:        issue,
			Depth:        depth,
			Relationship: rel,
			ParentKey:    parentKey,
			Last:         last,
		}
		if !w.yield(node, nil) {
			return false
		}
	}

	// Children of a node at the ceiling would exceed it; don't fetch them.
	if depth >= w.opts.maxDepth() {
		return true
	}

	descendants, err := w.expand(ctx, issue)
	if err != nil && !w.tolerate(err) {
		return false
	}

	for i, d := range descendants {
		if w.visited[d.key] || w.missing[d.key] {
			continue
		}
		next, err := w.resolve(ctx, d.key)
		if err != nil {
			if w.tolerate(err) {
				continue
			}
			return false
		}
		if next == nil {
			continue
		}
		if !w.visit(ctx, next, depth+1, d.rel, issue.Key, w.exhausted(descendants[i+1:])) {
			return false
		}
	}
	return true
}

// tolerate reports err to the consumer, or to OnWarning when fetch errors
// are skipped. It returns true when the walk may continue.
func (w *walk) tolerate(err error) bool {
	if w.opts.SkipFetchErrors && !isContextErr(err) {
		if w.opts.OnWarning != nil {
			w.opts.OnWarning(err.Error())
		}
		debug.Logf("Debug: skipping after fetch failure: %v\n", err)
		return true
	}
	w.yield(nil, err)
	return false
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// exhausted reports whether none of rest will still be visited.
func (w *walk) exhausted(rest []descendant) bool {
	for _, d := range rest {
		if !w.visited[d.key] && !w.missing[d.key] {
			return false
		}
	}
	return true
}

// resolve returns the record for key from the cache, falling back to a
// per-key fetch. A key that does not exist yields (nil, nil).
func (w *walk) resolve(ctx context.Context, key string) (*types.Issue, error) {
	if issue, ok := w.cache.Get(key); ok {
		return issue, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issue, err := w.provider.GetIssue(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			debug.Logf("Debug: %s does not resolve, skipping\n", key)
			w.missing[key] = true
			return nil, nil
		}
		return nil, &FetchError{Key: key, Op: "issue", Err: err}
	}
	if issue == nil {
		w.missing[key] = true
		return nil, nil
	}
	w.cache.Put(issue)
	return issue, nil
}

// expand fetches the children and the link targets of issue, concurrently,
// and returns the descendants to walk: children in returned order first,
// then link targets in link order. Both fetches complete before anything is
// expanded, so emission order does not depend on which returns first.
//
// On a failed fetch the descendants from the other fetch are still returned
// alongside the error.
func (w *walk) expand(ctx context.Context, issue *types.Issue) ([]descendant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	linkKeys := w.linkTargets(issue)
	var uncached []string
	for _, key := range linkKeys {
		if !w.cache.Has(key) {
			uncached = append(uncached, key)
		}
	}

	var (
		g                   errgroup.Group
		children, linked    []*types.Issue
		childErr, linkedErr error
	)
	g.Go(func() error {
		children, childErr = w.provider.QueryByParent(ctx, issue.Key, w.opts.Project)
		return nil
	})
	if len(uncached) > 0 {
		g.Go(func() error {
			linked, linkedErr = w.provider.GetIssues(ctx, uncached)
			return nil
		})
	}
	_ = g.Wait()

	var descendants []descendant
	seen := make(map[string]bool)
	add := func(key string, rel types.Relationship) {
		if key == "" || seen[key] || w.visited[key] {
			return
		}
		seen[key] = true
		descendants = append(descendants, descendant{key: key, rel: rel})
	}

	if childErr == nil {
		w.cache.Put(children...)
		for _, child := range children {
			if child == nil || !types.InProject(child.Key, w.opts.Project) {
				continue
			}
			add(child.Key, types.RelChild)
		}
	}

	if linkedErr == nil {
		w.cache.Put(linked...)
		for _, key := range uncached {
			if !w.cache.Has(key) {
				w.missing[key] = true
			}
		}
		for _, key := range linkKeys {
			add(key, types.RelLinked)
		}
	}

	switch {
	case childErr != nil:
		return descendants, &FetchError{Key: issue.Key, Op: "children", Err: childErr}
	case linkedErr != nil:
		return descendants, &FetchError{Key: issue.Key, Op: "links", Err: linkedErr}
	}
	return descendants, nil
}

// linkTargets returns the unvisited, eligible link target keys of issue in
// link order.
func (w *walk) linkTargets(issue *types.Issue) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, link := range issue.Links {
		key := link.TargetKey
		if key == "" || seen[key] || w.visited[key] || w.missing[key] {
			continue
		}
		if w.opts.ExcludeClones && link.IsClone() {
			continue
		}
		if !types.InProject(key, w.opts.Project) {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}
