package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

const (
	metricRunsTotal           = "tracksort.algorithm.runs.total"
	metricComparisons         = "tracksort.algorithm.comparisons"
	metricSwapsTotal          = "tracksort.algorithm.swaps.total"
	metricRunDuration         = "tracksort.algorithm.run.duration.seconds"
	metricVisualizationsTotal = "tracksort.visualizations.total"
	metricVisualizationSteps  = "tracksort.visualization.steps"

	attrAlgorithm = "algorithm"
	attrRecords   = "records_bucket"

	msPerSecond = 1000
)

// recordBuckets are the upper bounds used to label dataset sizes without
// creating a series per distinct length.
var recordBuckets = []int{10, 100, 1000, 10000}

// comparisonBucketBoundaries cover the query sizes the page offers through
// full-catalog sorts.
var comparisonBucketBoundaries = []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 100000}

// AlgorithmMetrics holds instruments for engine runs and visualizations.
// Its methods are no-ops on a nil receiver.
type AlgorithmMetrics struct {
	runsTotal      metric.Int64Counter
	comparisons    metric.Int64Histogram
	swapsTotal     metric.Int64Counter
	runDuration    metric.Float64Histogram
	visualizations metric.Int64Counter
	steps          metric.Int64Histogram
}

// NewAlgorithmMetrics creates the instruments from mt.
func NewAlgorithmMetrics(mt metric.Meter) (*AlgorithmMetrics, error) {
	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total algorithm runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	comparisons, err := mt.Int64Histogram(metricComparisons,
		metric.WithDescription("Comparisons per run"),
		metric.WithUnit("{comparison}"),
		metric.WithExplicitBucketBoundaries(comparisonBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricComparisons, err)
	}

	swaps, err := mt.Int64Counter(metricSwapsTotal,
		metric.WithDescription("Total swaps performed by sorting runs"),
		metric.WithUnit("{swap}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSwapsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Algorithm run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	visualizations, err := mt.Int64Counter(metricVisualizationsTotal,
		metric.WithDescription("Visualizer runs by terminal status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricVisualizationsTotal, err)
	}

	steps, err := mt.Int64Histogram(metricVisualizationSteps,
		metric.WithDescription("Snapshots published per visualizer run"),
		metric.WithUnit("{step}"),
		metric.WithExplicitBucketBoundaries(comparisonBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricVisualizationSteps, err)
	}

	return &AlgorithmMetrics{
		runsTotal:      runs,
		comparisons:    comparisons,
		swapsTotal:     swaps,
		runDuration:    duration,
		visualizations: visualizations,
		steps:          steps,
	}, nil
}

// RecordRun records one finished engine run over a dataset of the given size.
func (am *AlgorithmMetrics) RecordRun(ctx context.Context, res metrics.Result, records int) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrAlgorithm, string(res.Algorithm)),
		attribute.String(attrRecords, RecordBucket(records)),
	)

	am.runsTotal.Add(ctx, 1, attrs)
	am.comparisons.Record(ctx, res.Comparisons, attrs)
	am.runDuration.Record(ctx, res.ElapsedMs/msPerSecond, attrs)

	if swaps, ok := res.Swaps.Value(); ok {
		am.swapsTotal.Add(ctx, swaps, attrs)
	}
}

// RecordVisualization records one finished visualizer run.
func (am *AlgorithmMetrics) RecordVisualization(ctx context.Context, algorithm alg.Algorithm, status string, steps int64) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrAlgorithm, string(algorithm)),
		attribute.String(attrStatus, status),
	)

	am.visualizations.Add(ctx, 1, attrs)
	am.steps.Record(ctx, steps, attrs)
}

// RecordBucket labels a dataset size with the smallest bucket holding it.
func RecordBucket(n int) string {
	for _, b := range recordBuckets {
		if n <= b {
			return fmt.Sprintf("le_%d", b)
		}
	}

	return fmt.Sprintf("gt_%d", recordBuckets[len(recordBuckets)-1])
}
