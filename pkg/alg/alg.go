// Package alg names the comparison-based algorithms tracksort runs and
// measures. The implementations live in the sorting and search subpackages.
package alg

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm identifies a sort or search algorithm.
type Algorithm string

// Supported algorithms. The string values are the wire names used in run results.
const (
	QuickSort    Algorithm = "quickSort"
	MergeSort    Algorithm = "mergeSort"
	BinarySearch Algorithm = "binarySearch"
)

// ErrUnknownAlgorithm is returned when an algorithm name cannot be resolved.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// aliases maps short and long spellings onto canonical algorithm names.
var aliases = map[string]Algorithm{
	"quick":        QuickSort,
	"quicksort":    QuickSort,
	"merge":        MergeSort,
	"mergesort":    MergeSort,
	"binary":       BinarySearch,
	"binarysearch": BinarySearch,
}

// Parse resolves an algorithm name. Matching ignores case, so "quick",
// "quickSort" and "QUICKSORT" all resolve to QuickSort.
func Parse(name string) (Algorithm, error) {
	a, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}

	return a, nil
}

// IsSort reports whether the algorithm produces an ordering.
func (a Algorithm) IsSort() bool {
	return a == QuickSort || a == MergeSort
}

// HasSwaps reports whether a swap count is meaningful for the algorithm.
func (a Algorithm) HasSwaps() bool {
	return a.IsSort()
}

// Complexity returns the time and space complexity labels shown next to a run.
func (a Algorithm) Complexity() (timeLabel, spaceLabel string) {
	switch a {
	case QuickSort:
		return "O(n log n)", "O(n)"
	case MergeSort:
		return "O(n log n)", "O(n)"
	case BinarySearch:
		return "O(log n)", "O(1)"
	default:
		return "", ""
	}
}

// All returns every supported algorithm in display order.
func All() []Algorithm {
	return []Algorithm{QuickSort, MergeSort, BinarySearch}
}
