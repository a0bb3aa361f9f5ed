// Package search implements comparison-counted binary search.
//
// Binary search is only correct over records sorted ascending by the searched
// field. Callers either hand in sorted data or ask Find to presort a copy, in
// which case the presort cost is reported separately from the search cost.
package search

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/sorting"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

// ErrUnsorted is returned by Find when the input is not sorted by the
// searched field and presorting was not requested.
var ErrUnsorted = errors.New("input is not sorted")

// Probe reports where a record lies relative to the target: negative if the
// record's value is below it, zero on a match, positive above.
type Probe[R any] func(record R) int

// BinarySearch bisects sorted with mid = (low+high)/2, charging one comparison
// per iteration. It returns the index of a matching record, or -1 and false.
func BinarySearch[R any](sorted []R, probe Probe[R], counters *metrics.Counters) (int, bool) {
	low, high := 0, len(sorted)-1

	for low <= high {
		counters.Compare()

		mid := (low + high) / 2

		switch c := probe(sorted[mid]); {
		case c == 0:
			return mid, true
		case c < 0:
			low = mid + 1
		default:
			high = mid - 1
		}
	}

	return -1, false
}

// Prepared is a search-ready view of a record set.
type Prepared[R any] struct {
	// Sorted is ordered ascending by the searched field.
	Sorted []R

	// Presorted is true when Sorted is a sorted copy rather than the input.
	Presorted bool

	// Presort holds the cost of producing the sorted copy. It is zero when
	// the input was already sorted.
	Presort metrics.Counters
}

// Option configures Prepare and Find.
type Option func(*options)

type options struct {
	presort   bool
	algorithm alg.Algorithm
}

// WithPresort allows an unsorted input to be sorted with the given algorithm
// before searching. An empty algorithm selects merge sort.
func WithPresort(algorithm alg.Algorithm) Option {
	return func(o *options) {
		o.presort = true

		if algorithm != "" {
			o.algorithm = algorithm
		}
	}
}

// Prepare checks that records are sorted by compare. Unsorted input is sorted
// into a copy when WithPresort is given, and rejected with ErrUnsorted otherwise.
func Prepare[R any](records []R, compare sorting.Compare[R], opts ...Option) (Prepared[R], error) {
	o := options{algorithm: alg.MergeSort}
	for _, opt := range opts {
		opt(&o)
	}

	if sorting.IsSorted(records, compare) {
		return Prepared[R]{Sorted: records}, nil
	}

	if !o.presort {
		return Prepared[R]{}, ErrUnsorted
	}

	var presort metrics.Counters

	sorted, err := sorting.Sort(o.algorithm, records, compare, &presort)
	if err != nil {
		return Prepared[R]{}, fmt.Errorf("presort: %w", err)
	}

	return Prepared[R]{Sorted: sorted, Presorted: true, Presort: presort}, nil
}

// Outcome is the result of Find.
type Outcome[R any] struct {
	Prepared[R]

	// Index is the position of Record in Sorted, or -1 when not found.
	Index  int
	Found  bool
	Record R
}

// Find prepares records and runs BinarySearch over them. Search comparisons
// are charged to counters; presort comparisons are reported in the outcome.
func Find[R any](
	records []R, compare sorting.Compare[R], probe Probe[R], counters *metrics.Counters, opts ...Option,
) (Outcome[R], error) {
	prepared, err := Prepare(records, compare, opts...)
	if err != nil {
		return Outcome[R]{Index: -1}, err
	}

	out := Outcome[R]{Prepared: prepared, Index: -1}

	idx, found := BinarySearch(prepared.Sorted, probe, counters)
	if found {
		out.Index = idx
		out.Found = true
		out.Record = prepared.Sorted[idx]
	}

	return out, nil
}
