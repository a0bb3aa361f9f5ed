package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return red, reader
}

func setupAlgorithmMeter(t *testing.T) (*observability.AlgorithmMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	am, err := observability.NewAlgorithmMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return am, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	red.RecordRequest(context.Background(), "GET /data", observability.StatusOK, 100*time.Millisecond)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "tracksort.requests.total")))
	assert.NotNil(t, findMetric(rm, "tracksort.request.duration.seconds"))
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	red.RecordRequest(context.Background(), "GET /data", observability.StatusError, time.Second)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "tracksort.errors.total")))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	done := red.TrackInflight(context.Background(), "GET /visualize")
	assert.Equal(t, int64(1), sumInt64(t, findMetric(collectMetrics(t, reader), "tracksort.inflight.requests")))

	done()
	assert.Equal(t, int64(0), sumInt64(t, findMetric(collectMetrics(t, reader), "tracksort.inflight.requests")))
}

func TestREDMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	red.RecordRequest(context.Background(), "op", observability.StatusOK, time.Millisecond)
	red.TrackInflight(context.Background(), "op")()
}

func TestAlgorithmMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	am, reader := setupAlgorithmMeter(t)
	ctx := context.Background()

	am.RecordRun(ctx, metrics.Result{
		Algorithm: alg.QuickSort, Comparisons: 12, Swaps: metrics.Swaps(4), ElapsedMs: 1.5,
	}, 10)
	am.RecordRun(ctx, metrics.Result{
		Algorithm: alg.BinarySearch, Comparisons: 3, Swaps: metrics.SwapsNotApplicable(),
	}, 10)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumInt64(t, findMetric(rm, "tracksort.algorithm.runs.total")))
	assert.Equal(t, int64(4), sumInt64(t, findMetric(rm, "tracksort.algorithm.swaps.total")))
	assert.NotNil(t, findMetric(rm, "tracksort.algorithm.comparisons"))
	assert.NotNil(t, findMetric(rm, "tracksort.algorithm.run.duration.seconds"))
}

func TestAlgorithmMetrics_RecordVisualization(t *testing.T) {
	t.Parallel()

	am, reader := setupAlgorithmMeter(t)

	am.RecordVisualization(context.Background(), alg.MergeSort, "stopped", 17)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "tracksort.visualizations.total")))
	assert.NotNil(t, findMetric(rm, "tracksort.visualization.steps"))
}

func TestAlgorithmMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var am *observability.AlgorithmMetrics

	am.RecordRun(context.Background(), metrics.Result{Algorithm: alg.QuickSort}, 1)
	am.RecordVisualization(context.Background(), alg.QuickSort, "completed", 1)
}

func TestRecordBucket(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "le_10", observability.RecordBucket(0))
	assert.Equal(t, "le_10", observability.RecordBucket(10))
	assert.Equal(t, "le_100", observability.RecordBucket(11))
	assert.Equal(t, "le_10000", observability.RecordBucket(10000))
	assert.Equal(t, "gt_10000", observability.RecordBucket(10001))
}

func TestNewREDMetrics_WithNoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "test", observability.StatusOK, time.Millisecond)
}
