package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg/stats"
)

const delta = 1e-9

func TestSummarize(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2, 5}
	got := stats.Summarize(values)

	assert.Equal(t, 5, got.Count)
	assert.InDelta(t, 3, got.Mean, delta)
	assert.InDelta(t, 1.4142135623730951, got.StdDev, delta)
	assert.InDelta(t, 1, got.Min, delta)
	assert.InDelta(t, 3, got.Median, delta)
	assert.InDelta(t, 4.8, got.P95, delta)
	assert.InDelta(t, 5, got.Max, delta)
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, values)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, stats.Summary{}, stats.Summarize(nil))
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "empty", values: nil, p: 0.5, want: 0},
		{name: "single", values: []float64{7}, p: 0.95, want: 7},
		{name: "interpolated", values: []float64{10, 20}, p: 0.5, want: 15},
		{name: "clamped_high", values: []float64{1, 2, 3}, p: 2, want: 3},
		{name: "clamped_low", values: []float64{1, 2, 3}, p: -1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, stats.Percentile(tt.values, tt.p), delta)
		})
	}
}

func TestMeanStdDev(t *testing.T) {
	t.Parallel()

	mean, stddev := stats.MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, delta)
	assert.InDelta(t, 2, stddev, delta)

	mean, stddev = stats.MeanStdDev(nil)
	assert.Zero(t, mean)
	assert.Zero(t, stddev)
}
