package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestHooks(t *testing.T) (*MetricHooks, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h, err := NewMetricHooks(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricHooks() error: %v", err)
	}
	return h, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the counter value for the data point carrying attr, or
// the total over all points when attr is the zero KeyValue.
func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("%s metric not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if attr.Key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			total += dp.Value
		}
	}
	return total
}

func TestMetricHooksSheetCounters(t *testing.T) {
	h, reader := newTestHooks(t)

	h.OnSet(KindFormula)
	h.OnSet(KindFormula)
	h.OnSet(KindText)
	h.OnRejected("CIRCULAR_DEPENDENCY")
	h.OnEvaluate()
	h.OnEvaluate()
	h.OnEvaluate()
	h.OnInvalidate(4)
	h.OnInvalidate(0)
	h.OnClear(false)

	rm := collect(t, reader)

	tests := []struct {
		name string
		attr attribute.KeyValue
		want int64
	}{
		{"cellgraph.sheet.edits", attribute.String("kind", "formula"), 2},
		{"cellgraph.sheet.edits", attribute.String("kind", "text"), 1},
		{"cellgraph.sheet.rejected", attribute.String("code", "CIRCULAR_DEPENDENCY"), 1},
		{"cellgraph.sheet.evaluations", attribute.KeyValue{}, 3},
		{"cellgraph.sheet.invalidated", attribute.KeyValue{}, 4},
		{"cellgraph.sheet.clears", attribute.Bool("released", false), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+string(tt.attr.Key), func(t *testing.T) {
			if got := sumFor(t, rm, tt.name, tt.attr); got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestMetricHooksCacheCounters(t *testing.T) {
	h, reader := newTestHooks(t)
	ctx := context.Background()

	h.OnCacheMiss(ctx, "svg")
	h.OnCacheSet(ctx, "svg", 512)
	h.OnCacheHit(ctx, "svg")
	h.OnCacheHit(ctx, "svg")

	rm := collect(t, reader)

	if got := sumFor(t, rm, "cellgraph.cache.operations", attribute.String("result", "hit")); got != 2 {
		t.Errorf("cache hits = %d, want 2", got)
	}
	if got := sumFor(t, rm, "cellgraph.cache.operations", attribute.String("result", "miss")); got != 1 {
		t.Errorf("cache misses = %d, want 1", got)
	}
	if got := sumFor(t, rm, "cellgraph.cache.written", attribute.KeyValue{}); got != 512 {
		t.Errorf("cache bytes = %d, want 512", got)
	}
}
