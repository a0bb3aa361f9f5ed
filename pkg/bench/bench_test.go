package bench_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/bench"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

const benchRepeat = 3

type countingRecorder struct{ runs int }

func (r *countingRecorder) RecordRun(context.Context, metrics.Result, int) { r.runs++ }

func TestRun_PointsPerSizeAndAlgorithm(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}

	points, err := bench.Run(context.Background(), bench.Options{
		Sizes:    []int{8, 64},
		Repeat:   benchRepeat,
		Seed:     1,
		Recorder: rec,
	})
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.Equal(t, 6*benchRepeat, rec.runs)

	for i, a := range alg.All() {
		assert.Equal(t, a, points[i].Algorithm)
		assert.Equal(t, 8, points[i].Size)
		assert.Equal(t, 64, points[i+3].Size)
	}

	for _, p := range points {
		assert.Equal(t, benchRepeat, p.ElapsedMs.Count)
		assert.Positive(t, p.Comparisons)
		assert.Equal(t, p.Algorithm.HasSwaps(), p.HasSwaps)

		if p.Algorithm == alg.BinarySearch {
			bound := math.Ceil(math.Log2(float64(p.Size))) + 1
			assert.LessOrEqual(t, p.Comparisons, bound)
			assert.Zero(t, p.Swaps)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	opts := bench.Options{Sizes: []int{32}, Algorithms: []alg.Algorithm{alg.QuickSort}, Repeat: 2, Seed: 7}

	first, err := bench.Run(context.Background(), opts)
	require.NoError(t, err)

	second, err := bench.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.InDelta(t, first[0].Comparisons, second[0].Comparisons, 0)
	assert.InDelta(t, first[0].Swaps, second[0].Swaps, 0)
}

func TestRun_Invalid(t *testing.T) {
	t.Parallel()

	_, err := bench.Run(context.Background(), bench.Options{Sizes: []int{0}})
	require.ErrorIs(t, err, bench.ErrInvalidSize)

	_, err = bench.Run(context.Background(), bench.Options{Repeat: -1})
	require.ErrorIs(t, err, bench.ErrInvalidRepeat)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bench.Run(ctx, bench.Options{Sizes: []int{4}})
	require.ErrorIs(t, err, context.Canceled)
}
