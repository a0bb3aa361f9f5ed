package search_test

import (
	"cmp"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	// boundMaxLen is the largest input length checked against the bound.
	boundMaxLen = 130

	// idScenarioTarget is the id searched for in the five-record scenario.
	idScenarioTarget = 4

	// idScenarioMaxComparisons is the bound for five records.
	idScenarioMaxComparisons = 3

	// randomTrials is the number of shuffled inputs searched after presorting.
	randomTrials = 100
)

func intProbe(target int) search.Probe[int] {
	return func(v int) int { return cmp.Compare(v, target) }
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i*2 + 1
	}

	return out
}

func TestBinarySearch_IDScenario(t *testing.T) {
	t.Parallel()

	tracks := []track.Track{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	probe, err := track.Probe(track.FieldID, "4")
	require.NoError(t, err)

	counters := &metrics.Counters{}
	idx, found := search.BinarySearch(tracks, probe, counters)

	require.True(t, found)
	assert.Equal(t, int64(idScenarioTarget), tracks[idx].ID)
	assert.LessOrEqual(t, counters.Comparisons, int64(idScenarioMaxComparisons))
	assert.Zero(t, counters.Swaps)
}

func TestBinarySearch_Empty(t *testing.T) {
	t.Parallel()

	counters := &metrics.Counters{}
	idx, found := search.BinarySearch(nil, intProbe(1), counters)

	assert.False(t, found)
	assert.Equal(t, -1, idx)
	assert.Zero(t, counters.Comparisons)
}

func TestBinarySearch_CorrectnessAndBound(t *testing.T) {
	t.Parallel()

	for n := 0; n <= boundMaxLen; n++ {
		data := sequence(n)
		bound := int64(metrics.SearchComparisonBound(n))

		// Odd values below 2n are present; even values fall into every gap, and
		// 0 and 2n+1 lie past both ends.
		for target := 0; target <= 2*n+1; target++ {
			counters := &metrics.Counters{}
			idx, found := search.BinarySearch(data, intProbe(target), counters)

			if target%2 == 1 && target < 2*n {
				require.True(t, found, "n=%d target=%d", n, target)
				assert.Equal(t, target, data[idx])
			} else {
				require.False(t, found, "n=%d target=%d", n, target)
			}

			assert.LessOrEqual(t, counters.Comparisons, bound, "n=%d target=%d", n, target)
		}
	}
}

func TestFind_RejectsUnsorted(t *testing.T) {
	t.Parallel()

	counters := &metrics.Counters{}
	_, err := search.Find([]int{3, 1, 2}, cmp.Compare[int], intProbe(2), counters)

	require.ErrorIs(t, err, search.ErrUnsorted)
	assert.Zero(t, counters.Comparisons)
}

func TestFind_PresortIsAccountedSeparately(t *testing.T) {
	t.Parallel()

	input := []int{5, 3, 1, 4, 2}
	counters := &metrics.Counters{}

	out, err := search.Find(input, cmp.Compare[int], intProbe(4), counters, search.WithPresort(""))
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, 4, out.Record)
	assert.True(t, out.Presorted)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, out.Sorted)
	assert.Positive(t, out.Presort.Comparisons)
	assert.LessOrEqual(t, counters.Comparisons, int64(idScenarioMaxComparisons))
	assert.Equal(t, []int{5, 3, 1, 4, 2}, input)
}

func TestFind_SortedInputSkipsPresort(t *testing.T) {
	t.Parallel()

	out, err := search.Find(sequence(8), cmp.Compare[int], intProbe(6), nil, search.WithPresort(alg.QuickSort))
	require.NoError(t, err)

	assert.False(t, out.Found)
	assert.Equal(t, -1, out.Index)
	assert.False(t, out.Presorted)
	assert.Equal(t, metrics.Counters{}, out.Presort)
}

func TestFind_TextFieldCaseInsensitive(t *testing.T) {
	t.Parallel()

	tracks := []track.Track{{ID: 1, Name: "Supernova"}, {ID: 2, Name: "armageddon"}, {ID: 3, Name: "Drama"}}
	probe, err := track.Probe(track.FieldName, "DRAMA")
	require.NoError(t, err)

	out, err := search.Find(tracks, track.Comparator(track.FieldName), probe, nil, search.WithPresort(alg.MergeSort))
	require.NoError(t, err)

	require.True(t, out.Found)
	assert.Equal(t, int64(3), out.Record.ID)
}

func TestFind_RejectsNonSortPresort(t *testing.T) {
	t.Parallel()

	_, err := search.Find([]int{2, 1}, cmp.Compare[int], intProbe(1), nil, search.WithPresort(alg.BinarySearch))
	require.ErrorIs(t, err, alg.ErrUnknownAlgorithm)
}

func TestFind_RandomPresorted(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 8))

	for range randomTrials {
		data := rng.Perm(rng.IntN(boundMaxLen) + 1)
		target := rng.IntN(len(data) + 2)

		out, err := search.Find(data, cmp.Compare[int], intProbe(target), nil, search.WithPresort(""))
		require.NoError(t, err)
		assert.Equal(t, target < len(data), out.Found, "target=%d len=%d", target, len(data))
	}
}
