package alg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
)

func TestParse_Aliases(t *testing.T) {
	t.Parallel()

	cases := map[string]alg.Algorithm{
		"quick":        alg.QuickSort,
		"quickSort":    alg.QuickSort,
		" MERGE ":      alg.MergeSort,
		"mergesort":    alg.MergeSort,
		"binary":       alg.BinarySearch,
		"binarySearch": alg.BinarySearch,
	}

	for input, want := range cases {
		got, err := alg.Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParse_Unknown(t *testing.T) {
	t.Parallel()

	_, err := alg.Parse("bogosort")
	require.ErrorIs(t, err, alg.ErrUnknownAlgorithm)
}

func TestAlgorithm_HasSwaps(t *testing.T) {
	t.Parallel()

	assert.True(t, alg.QuickSort.HasSwaps())
	assert.True(t, alg.MergeSort.HasSwaps())
	assert.False(t, alg.BinarySearch.HasSwaps())
}

func TestAlgorithm_Complexity(t *testing.T) {
	t.Parallel()

	timeLabel, spaceLabel := alg.BinarySearch.Complexity()
	assert.Equal(t, "O(log n)", timeLabel)
	assert.Equal(t, "O(1)", spaceLabel)
}
