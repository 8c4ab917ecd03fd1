package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricHooks implements SheetHooks and CacheHooks on OpenTelemetry
// counters. It is safe for concurrent use.
type MetricHooks struct {
	edits       metric.Int64Counter
	rejected    metric.Int64Counter
	evaluations metric.Int64Counter
	invalidated metric.Int64Counter
	clears      metric.Int64Counter
	cacheOps    metric.Int64Counter
	cacheBytes  metric.Int64Counter
}

// NewMetricHooks creates the instruments on meter.
func NewMetricHooks(meter metric.Meter) (*MetricHooks, error) {
	var (
		m   MetricHooks
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.edits, "cellgraph.sheet.edits", "Accepted cell edits by resulting content kind", "{edit}"},
		{&m.rejected, "cellgraph.sheet.rejected", "Rejected cell edits by error code", "{edit}"},
		{&m.evaluations, "cellgraph.sheet.evaluations", "Formula evaluations that missed the value cache", "{evaluation}"},
		{&m.invalidated, "cellgraph.sheet.invalidated", "Cached formula values discarded by edits", "{cell}"},
		{&m.clears, "cellgraph.sheet.clears", "Cell clears by whether the slot was released", "{clear}"},
		{&m.cacheOps, "cellgraph.cache.operations", "Artifact cache lookups and writes", "{operation}"},
		{&m.cacheBytes, "cellgraph.cache.written", "Bytes written to the artifact cache", "By"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (m *MetricHooks) OnSet(kind ContentKind) {
	m.edits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (m *MetricHooks) OnRejected(code string) {
	m.rejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("code", code)))
}

func (m *MetricHooks) OnEvaluate() {
	m.evaluations.Add(context.Background(), 1)
}

func (m *MetricHooks) OnInvalidate(count int) {
	if count > 0 {
		m.invalidated.Add(context.Background(), int64(count))
	}
}

func (m *MetricHooks) OnClear(released bool) {
	m.clears.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("released", released)))
}

func (m *MetricHooks) OnCacheHit(ctx context.Context, keyType string) {
	m.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", "hit"),
	))
}

func (m *MetricHooks) OnCacheMiss(ctx context.Context, keyType string) {
	m.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", "miss"),
	))
}

func (m *MetricHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	opt := metric.WithAttributes(attribute.String("key_type", keyType))
	m.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", "set"),
	))
	m.cacheBytes.Add(ctx, int64(size), opt)
}

var (
	_ SheetHooks = (*MetricHooks)(nil)
	_ CacheHooks = (*MetricHooks)(nil)
)
