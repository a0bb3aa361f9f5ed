// Package sorting implements comparison-counted quicksort and merge sort.
//
// Both algorithms take a comparator with cmp.Compare semantics and a
// metrics.Counters accumulator shared by the whole recursive call tree. The
// input slice is never modified; the result is a permutation of it ordered
// by the comparator.
package sorting

import (
	"fmt"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

// Compare orders two records: negative if a precedes b, zero if equal,
// positive otherwise. It must be a total order over the records supplied.
type Compare[R any] func(a, b R) int

// QuickSort sorts records with a three-way partition around the middle
// element. Every element of a slice is compared once against the pivot, and
// |less|+|greater| relocations are charged per partition.
func QuickSort[R any](records []R, compare Compare[R], counters *metrics.Counters) []R {
	if len(records) <= 1 {
		return records
	}

	pivot := records[len(records)/2]

	var less, equal, greater []R

	for _, r := range records {
		counters.Compare()

		switch c := compare(r, pivot); {
		case c < 0:
			less = append(less, r)
		case c > 0:
			greater = append(greater, r)
		default:
			equal = append(equal, r)
		}
	}

	counters.Swap(len(less) + len(greater))

	out := make([]R, 0, len(records))
	out = append(out, QuickSort(less, compare, counters)...)
	out = append(out, equal...)
	out = append(out, QuickSort(greater, compare, counters)...)

	return out
}

// MergeSort sorts records stably by splitting at the midpoint. Each merge
// step charges one comparison, and every element placed charges one swap,
// leftover flushes included.
func MergeSort[R any](records []R, compare Compare[R], counters *metrics.Counters) []R {
	if len(records) <= 1 {
		return records
	}

	mid := len(records) / 2
	left := MergeSort(records[:mid], compare, counters)
	right := MergeSort(records[mid:], compare, counters)

	return merge(left, right, compare, counters)
}

func merge[R any](left, right []R, compare Compare[R], counters *metrics.Counters) []R {
	out := make([]R, 0, len(left)+len(right))
	li, ri := 0, 0

	for li < len(left) && ri < len(right) {
		counters.Compare()

		if compare(left[li], right[ri]) <= 0 {
			out = append(out, left[li])
			li++
		} else {
			out = append(out, right[ri])
			ri++
		}

		counters.Swap(1)
	}

	for ; li < len(left); li++ {
		out = append(out, left[li])
		counters.Swap(1)
	}

	for ; ri < len(right); ri++ {
		out = append(out, right[ri])
		counters.Swap(1)
	}

	return out
}

// Sort dispatches to the named sorting algorithm.
func Sort[R any](algorithm alg.Algorithm, records []R, compare Compare[R], counters *metrics.Counters) ([]R, error) {
	switch algorithm {
	case alg.QuickSort:
		return QuickSort(records, compare, counters), nil
	case alg.MergeSort:
		return MergeSort(records, compare, counters), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a sort", alg.ErrUnknownAlgorithm, algorithm)
	}
}

// IsSorted reports whether records are in non-decreasing order. It does not
// charge any counters.
func IsSorted[R any](records []R, compare Compare[R]) bool {
	for i := 1; i < len(records); i++ {
		if compare(records[i-1], records[i]) > 0 {
			return false
		}
	}

	return true
}
