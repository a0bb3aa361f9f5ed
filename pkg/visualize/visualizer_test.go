package visualize_test

import (
	"cmp"
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/sorting"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

const (
	// traceTrials is the number of shuffled arrays traced per algorithm.
	traceTrials = 50

	// traceMaxLen bounds the traced array length.
	traceMaxLen = 24

	// stopAfter is the snapshot count after which a run is stopped.
	stopAfter = 5

	// blockingDelay keeps a run parked in its first pause.
	blockingDelay = time.Hour

	// resetStarters is the number of goroutines starting runs during resets.
	resetStarters = 4

	// resetRounds is the number of resets raced against the starters.
	resetRounds = 2000
)

// collector gathers published snapshots.
type collector struct {
	mu    sync.Mutex
	snaps []visualize.Snapshot
}

func (c *collector) publish(s visualize.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snaps = append(c.snaps, s)
}

func (c *collector) all() []visualize.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.snaps)
}

func shuffled(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 4
	}

	rng.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })

	return out
}

func instant(data []int) *visualize.Visualizer {
	return visualize.New(data, visualize.WithDelays(visualize.Delays{}))
}

func target(v int) *int {
	return &v
}

func TestRun_SortTracesCompleteAndStayPermutations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(11, 12))

	for _, algorithm := range []alg.Algorithm{alg.QuickSort, alg.MergeSort} {
		for range traceTrials {
			data := shuffled(rng, rng.IntN(traceMaxLen+1))
			want := append([]int{}, slices.Sorted(slices.Values(data))...)

			var c collector

			v := instant(data)
			out, err := v.Run(context.Background(), visualize.Request{Algorithm: algorithm}, c.publish)
			require.NoError(t, err)

			assert.Equal(t, visualize.StatusCompleted, out.Status)
			assert.Equal(t, want, out.Array, algorithm)
			assert.Equal(t, want, v.Data())
			assert.Equal(t, visualize.StateCompleted, v.State())

			snaps := c.all()
			require.NotEmpty(t, snaps)

			for i, s := range snaps {
				assert.Equal(t, int64(i+1), s.Step)
				assert.ElementsMatch(t, data, s.Array, "step %d must be a permutation", s.Step)
			}

			last := snaps[len(snaps)-1]
			assert.True(t, last.Final)
			assert.Equal(t, visualize.PhaseNone, last.Phase)
			assert.Empty(t, last.Pointers)
			assert.Equal(t, out.Result.Comparisons, last.Metrics.Comparisons)
			assert.Equal(t, out.Steps, last.Step)
		}
	}
}

func TestRun_MergeTraceMatchesEngineComparisons(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(13, 14))

	for range traceTrials {
		data := shuffled(rng, rng.IntN(traceMaxLen+1))

		var engine metrics.Counters

		sorting.MergeSort(data, cmp.Compare[int], &engine)

		out, err := instant(data).Run(context.Background(), visualize.Request{Algorithm: alg.MergeSort}, nil)
		require.NoError(t, err)
		assert.Equal(t, engine.Comparisons, out.Result.Comparisons)
	}
}

func TestRun_QuickTracePointers(t *testing.T) {
	t.Parallel()

	var c collector

	_, err := instant([]int{7, 4, 6, 5}).Run(context.Background(), visualize.Request{Algorithm: alg.QuickSort}, c.publish)
	require.NoError(t, err)

	first := c.all()[0]
	assert.Equal(t, visualize.PhaseCompare, first.Phase)
	assert.Equal(t, map[string]int{visualize.PointerI: -1, visualize.PointerJ: 0, visualize.PointerPivot: 3}, first.Pointers)
	assert.Equal(t, []int{0, 3}, first.Active)
}

func TestRun_BinarySearch(t *testing.T) {
	t.Parallel()

	var c collector

	v := instant([]int{4, 5, 6, 7, 8})
	out, err := v.Run(context.Background(), visualize.Request{Algorithm: alg.BinarySearch, Target: target(7)}, c.publish)
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, 3, out.Index)
	assert.Nil(t, out.Presort)
	assert.LessOrEqual(t, out.Result.Comparisons, int64(metrics.SearchComparisonBound(5)))

	swaps, applicable := out.Result.Swaps.Value()
	assert.False(t, applicable)
	assert.Zero(t, swaps)

	snaps := c.all()
	assert.Equal(t, visualize.PhaseBisect, snaps[0].Phase)
	assert.Contains(t, snaps[0].Pointers, visualize.PointerMid)

	last := snaps[len(snaps)-1]
	require.NotNil(t, last.Found)
	assert.Equal(t, 3, *last.Found)
}

func TestRun_BinarySearchRequiresSortedInput(t *testing.T) {
	t.Parallel()

	v := instant([]int{8, 4, 6})

	_, err := v.Run(context.Background(), visualize.Request{Algorithm: alg.BinarySearch, Target: target(6)}, nil)
	require.ErrorIs(t, err, search.ErrUnsorted)
	assert.Equal(t, visualize.StateIdle, v.State())
	assert.Equal(t, []int{8, 4, 6}, v.Data())

	out, err := v.Run(context.Background(),
		visualize.Request{Algorithm: alg.BinarySearch, Target: target(6), Presort: true}, nil)
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, []int{4, 6, 8}, out.Array)
	require.NotNil(t, out.Presort)
	assert.Positive(t, out.Presort.Comparisons)
}

func TestRun_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	v := instant([]int{1})

	_, err := v.Run(context.Background(), visualize.Request{Algorithm: alg.BinarySearch}, nil)
	require.ErrorIs(t, err, visualize.ErrNoTarget)

	_, err = v.Run(context.Background(), visualize.Request{Algorithm: "bogoSort"}, nil)
	require.ErrorIs(t, err, alg.ErrUnknownAlgorithm)

	assert.False(t, v.Start(context.Background(), visualize.Request{Algorithm: "bogoSort"}, nil))
	assert.Equal(t, visualize.StateIdle, v.State())
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, algorithm := range alg.All() {
		out, err := instant(nil).Run(context.Background(),
			visualize.Request{Algorithm: algorithm, Target: target(1)}, nil)
		require.NoError(t, err)

		assert.Equal(t, visualize.StatusCompleted, out.Status)
		assert.Empty(t, out.Array)
		assert.Zero(t, out.Result.Comparisons)
		assert.False(t, out.Found)
	}
}

func TestStop_LeavesPermutationAndCountsCompletedSteps(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(15, 16))

	for _, algorithm := range []alg.Algorithm{alg.QuickSort, alg.MergeSort} {
		data := shuffled(rng, traceMaxLen)
		v := instant(data)

		var snaps []visualize.Snapshot

		publish := func(s visualize.Snapshot) {
			snaps = append(snaps, s)
			if len(snaps) == stopAfter {
				v.Stop()
			}
		}

		out, err := v.Run(context.Background(), visualize.Request{Algorithm: algorithm}, publish)
		require.NoError(t, err)

		assert.Equal(t, visualize.StatusStopped, out.Status)
		assert.Equal(t, visualize.StateStopped, v.State())
		assert.Len(t, snaps, stopAfter, "no snapshot after stop")
		assert.ElementsMatch(t, data, out.Array)
		assert.Equal(t, snaps[len(snaps)-1].Metrics.Comparisons, out.Result.Comparisons)
		assert.False(t, snaps[len(snaps)-1].Final)

		// Stopped accepts a new run.
		again, err := v.Run(context.Background(), visualize.Request{Algorithm: algorithm}, nil)
		require.NoError(t, err)
		assert.Equal(t, visualize.StatusCompleted, again.Status)
		assert.True(t, slices.IsSorted(again.Array))
	}
}

func TestRun_ParentCancellationStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := instant([]int{3, 2, 1}).Run(ctx, visualize.Request{Algorithm: alg.MergeSort}, nil)
	require.NoError(t, err)

	assert.Equal(t, visualize.StatusStopped, out.Status)
	assert.Zero(t, out.Result.Comparisons)
}

func TestStart_BusyAndStop(t *testing.T) {
	t.Parallel()

	v := visualize.New([]int{3, 2, 1}, visualize.WithDelays(visualize.Delays{Compare: blockingDelay}))
	req := visualize.Request{Algorithm: alg.QuickSort}

	require.True(t, v.Start(context.Background(), req, nil))
	assert.Equal(t, visualize.StateRunning, v.State())
	assert.False(t, v.Start(context.Background(), req, nil))

	_, err := v.Run(context.Background(), req, nil)
	require.ErrorIs(t, err, visualize.ErrBusy)

	v.Stop()
	v.Wait()

	assert.Equal(t, visualize.StateStopped, v.State())

	last, ok := v.Last()
	require.True(t, ok)
	assert.Equal(t, visualize.StatusStopped, last.Status)
}

func TestReset_StopsAndReplacesData(t *testing.T) {
	t.Parallel()

	v := visualize.New([]int{3, 2, 1}, visualize.WithDelays(visualize.Delays{Compare: blockingDelay}))
	require.True(t, v.Start(context.Background(), visualize.Request{Algorithm: alg.MergeSort}, nil))

	v.Reset([]int{9, 8})

	assert.Equal(t, visualize.StateIdle, v.State())
	assert.Equal(t, []int{9, 8}, v.Data())

	_, ok := v.Last()
	assert.False(t, ok)
}

func TestReset_ConcurrentWithStart(t *testing.T) {
	t.Parallel()

	data := []int{7, 3, 9, 1, 5, 8}
	v := visualize.New(data,
		visualize.WithDelays(visualize.Delays{}),
		visualize.WithLogger(slog.New(slog.DiscardHandler)),
	)
	req := visualize.Request{Algorithm: alg.MergeSort}

	var (
		wg      sync.WaitGroup
		stopped = make(chan struct{})
	)

	for range resetStarters {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				select {
				case <-stopped:
					return
				default:
					v.Start(context.Background(), req, nil)
				}
			}
		}()
	}

	for range resetRounds {
		v.Reset(data)
	}

	close(stopped)
	wg.Wait()

	v.Reset(data)

	assert.Equal(t, visualize.StateIdle, v.State())
	assert.Equal(t, data, v.Data())

	out, err := v.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5, 7, 8, 9}, out.Array)
}

func TestRun_StepsIndependentOfPublisher(t *testing.T) {
	t.Parallel()

	for _, algorithm := range []alg.Algorithm{alg.QuickSort, alg.MergeSort} {
		var c collector

		withPublisher, err := instant([]int{4, 2, 5, 1}).Run(context.Background(), visualize.Request{Algorithm: algorithm}, c.publish)
		require.NoError(t, err)

		silent, err := instant([]int{4, 2, 5, 1}).Run(context.Background(), visualize.Request{Algorithm: algorithm}, nil)
		require.NoError(t, err)

		assert.Equal(t, withPublisher.Steps, silent.Steps, algorithm)
		assert.Equal(t, int64(len(c.all())), silent.Steps, algorithm)
	}
}

func TestSnapshot_IsolatedFromWorkingArray(t *testing.T) {
	t.Parallel()

	var c collector

	publish := func(s visualize.Snapshot) {
		c.publish(s.Clone())

		for i := range s.Array {
			s.Array[i] = -1
		}
	}

	out, err := instant([]int{5, 4, 6}).Run(context.Background(), visualize.Request{Algorithm: alg.QuickSort}, publish)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5, 6}, out.Array)

	for _, s := range c.all() {
		assert.NotContains(t, s.Array, -1)
	}
}

func TestDelays(t *testing.T) {
	t.Parallel()

	d := visualize.DefaultDelays()
	assert.Equal(t, visualize.DefaultCompareDelay, d.Compare)
	assert.Equal(t, visualize.DefaultBisectDelay, d.Bisect)

	half := d.Scale(0.5)
	assert.Equal(t, visualize.DefaultSwapDelay/2, half.Swap)
	assert.Equal(t, visualize.Delays{}, d.Scale(0))
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", visualize.StateIdle.String())
	assert.Equal(t, "running", visualize.StateRunning.String())
	assert.Equal(t, "completed", visualize.StateCompleted.String())
	assert.Equal(t, "stopped", visualize.StateStopped.String())
	assert.Equal(t, "unknown", visualize.State(42).String())
}
