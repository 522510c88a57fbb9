package roadmap

import (
	"context"
	"fmt"

	"github.com/sidekick-cli/sidekick/internal/debug"
	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/types"
)

// Options configures one labeling run.
type Options struct {
	Project  string // Restrict the walk to one project; empty walks all
	DryRun   bool   // Report missing labels without writing them
	Limit    int    // Stop once this many issues were processed; 0 = no limit
	MaxDepth int    // Passed to the walker; 0 = hierarchy.DefaultMaxDepth
}

// Result holds the counters of a labeling run.
// Processed is always Labeled + Skipped; failed writes only count in Errors.
type Result struct {
	Processed int `json:"processed"`
	Labeled   int `json:"labeled"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// PlanEntry describes the decision taken for one issue.
type PlanEntry struct {
	Key       string   `json:"key"`
	Summary   string   `json:"summary"`
	Depth     int      `json:"depth"`
	Current   []string `json:"current_labels"`
	Computed  []string `json:"computed_labels"`
	Missing   []string `json:"labels_to_add"`
	Inherited bool     `json:"inherited"`
	Applied   bool     `json:"applied"` // Labels were written
	Err       error    `json:"-"`
}

// Skipped reports whether the issue already carried every computed label.
func (e PlanEntry) Skipped() bool {
	return len(e.Missing) == 0
}

// Propagator writes roadmap labels to every issue below a coded root.
type Propagator struct {
	Tracker hierarchy.Tracker

	// Callbacks for UI feedback (optional).
	OnEntry   func(entry PlanEntry)
	OnWarning func(msg string)
}

// NewPropagator creates a propagator reading and writing through t.
func NewPropagator(t hierarchy.Tracker) *Propagator {
	return &Propagator{Tracker: t}
}

// Run walks the hierarchy under rootKey, clone links excluded, and adds the
// missing roadmap labels of every issue visited.
//
// The root summary must start with a roadmap code, otherwise a
// *ConfigurationError is returned before anything below the root is read.
// A failed write is reported through OnWarning and the run continues; a
// failed read ends it. The returned Result is non-nil in both cases.
func (p *Propagator) Run(ctx context.Context, rootKey string, opts Options) (*Result, error) {
	result := &Result{}
	walker := hierarchy.New(p.Tracker)
	walkOpts := hierarchy.Options{
		Project:       opts.Project,
		MaxDepth:      opts.MaxDepth,
		ExcludeClones: true,
	}

	var planner *Planner
	for node, err := range walker.Walk(ctx, rootKey, walkOpts) {
		if err != nil {
			return result, err
		}
		if node.IsRoot() {
			code, ok := ParseCode(node.Issue.Summary)
			if !ok {
				return result, &ConfigurationError{Key: node.Issue.Key, Summary: node.Issue.Summary}
			}
			debug.Logf("Debug: labeling %s from root code %s\n", node.Issue.Key, code)
			planner = NewPlanner(code)
		}

		labels, inherited := planner.Plan(node)
		entry := PlanEntry{
			Key:       node.Issue.Key,
			Summary:   node.Issue.Summary,
			Depth:     node.Depth,
			Current:   node.Issue.Labels,
			Computed:  labels,
			Missing:   types.MissingLabels(labels, node.Issue.Labels),
			Inherited: inherited,
		}
		if err := p.apply(ctx, &entry, opts.DryRun, result); err != nil {
			return result, err
		}
		if p.OnEntry != nil {
			p.OnEntry(entry)
		}

		if opts.Limit > 0 && result.Processed >= opts.Limit {
			debug.Logf("Debug: limit of %d issues reached\n", opts.Limit)
			break
		}
	}

	debug.Logf("Debug: labeling done: %+v\n", *result)
	return result, nil
}

// apply writes the missing labels of entry and updates the counters. It
// returns an error only when the run must stop.
func (p *Propagator) apply(ctx context.Context, entry *PlanEntry, dryRun bool, result *Result) error {
	switch {
	case entry.Skipped():
		result.Skipped++
		result.Processed++
		return nil
	case dryRun:
		result.Labeled++
		result.Processed++
		return nil
	}

	if err := p.Tracker.AddLabels(ctx, entry.Key, entry.Missing); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		entry.Err = &WriteError{Key: entry.Key, Labels: entry.Missing, Err: err}
		result.Errors++
		p.warn("%v", entry.Err)
		return nil
	}
	entry.Applied = true
	result.Labeled++
	result.Processed++
	return nil
}

func (p *Propagator) warn(format string, args ...interface{}) {
	if p.OnWarning != nil {
		p.OnWarning(fmt.Sprintf(format, args...))
	}
}
