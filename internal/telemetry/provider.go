package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sidekick-cli/sidekick/internal/hierarchy"
	"github.com/sidekick-cli/sidekick/internal/types"
)

const providerScopeName = "github.com/sidekick-cli/sidekick/provider"

// InstrumentedProvider wraps hierarchy.Tracker with OTel tracing and metrics.
// Every method gets a span and is counted in sk.provider.* metrics.
// Use WrapProvider to create one; it returns the original tracker unchanged
// when telemetry is disabled.
type InstrumentedProvider struct {
	inner  hierarchy.Tracker
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
	issues metric.Int64Counter
}

var _ hierarchy.Tracker = (*InstrumentedProvider)(nil)

// WrapProvider returns t decorated with OTel instrumentation.
// When telemetry is disabled, t is returned as-is with zero overhead.
func WrapProvider(t hierarchy.Tracker) hierarchy.Tracker {
	if !Enabled() {
		return t
	}
	return newInstrumentedProvider(t)
}

func newInstrumentedProvider(t hierarchy.Tracker) *InstrumentedProvider {
	m := Meter(providerScopeName)
	ops, _ := m.Int64Counter("sk.provider.operations",
		metric.WithDescription("Total issue provider operations executed"),
	)
	dur, _ := m.Float64Histogram("sk.provider.operation.duration",
		metric.WithDescription("Issue provider operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("sk.provider.errors",
		metric.WithDescription("Total issue provider operation errors"),
	)
	issues, _ := m.Int64Counter("sk.provider.issues",
		metric.WithDescription("Issue records returned by the provider"),
	)
	return &InstrumentedProvider{
		inner:  t,
		tracer: Tracer(providerScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
		issues: issues,
	}
}

// op starts a span and records a metric for the named provider operation.
func (p *InstrumentedProvider) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("sk.operation", name)}, attrs...)
	ctx, span := p.tracer.Start(ctx, "provider."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	p.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("sk.operation", name)))
	return ctx, span, time.Now()
}

// done ends the span, records duration, returned issues and optional error.
func (p *InstrumentedProvider) done(ctx context.Context, span trace.Span, start time.Time, name string, n int, err error) {
	attrs := metric.WithAttributes(attribute.String("sk.operation", name))
	p.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if n > 0 {
		p.issues.Add(ctx, int64(n), attrs)
		span.SetAttributes(attribute.Int("sk.issue.count", n))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func (p *InstrumentedProvider) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	ctx, span, t := p.op(ctx, "GetIssue", attribute.String("sk.issue.key", key))
	v, err := p.inner.GetIssue(ctx, key)
	n := 0
	if v != nil {
		n = 1
	}
	p.done(ctx, span, t, "GetIssue", n, err)
	return v, err
}

func (p *InstrumentedProvider) GetIssues(ctx context.Context, keys []string) ([]*types.Issue, error) {
	ctx, span, t := p.op(ctx, "GetIssues", attribute.Int("sk.key.count", len(keys)))
	v, err := p.inner.GetIssues(ctx, keys)
	p.done(ctx, span, t, "GetIssues", len(v), err)
	return v, err
}

func (p *InstrumentedProvider) QueryByParent(ctx context.Context, parentKey, project string) ([]*types.Issue, error) {
	ctx, span, t := p.op(ctx, "QueryByParent",
		attribute.String("sk.issue.key", parentKey),
		attribute.String("sk.project", project),
	)
	v, err := p.inner.QueryByParent(ctx, parentKey, project)
	p.done(ctx, span, t, "QueryByParent", len(v), err)
	return v, err
}

func (p *InstrumentedProvider) AddLabels(ctx context.Context, key string, labels []string) error {
	ctx, span, t := p.op(ctx, "AddLabels",
		attribute.String("sk.issue.key", key),
		attribute.StringSlice("sk.labels", labels),
	)
	err := p.inner.AddLabels(ctx, key, labels)
	p.done(ctx, span, t, "AddLabels", 0, err)
	return err
}
