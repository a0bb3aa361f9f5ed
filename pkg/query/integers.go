package query

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/sorting"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// randomBase is the smallest value RandomIntegers produces.
const randomBase = 4

// RandomIntegers returns the values randomBase..n+randomBase-1 in a
// Fisher-Yates shuffled order. A nil rng uses the global source.
func RandomIntegers(n int, rng *rand.Rand) []int {
	if n <= 0 {
		return []int{}
	}

	out := make([]int, n)
	for i := range out {
		out[i] = i + randomBase
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}

	shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })

	return out
}

// ParseIntTarget parses an integer search target. Failures wrap
// track.ErrInvalidTarget; searches report them as StatusInvalidInput.
func ParseIntTarget(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", track.ErrInvalidTarget, s)
	}

	return n, nil
}

// IntSortRun is the outcome of SortIntegers.
type IntSortRun struct {
	Result metrics.Result `json:"result"`
	Sorted []int          `json:"sorted"`
}

// SortIntegers sorts an integer dataset and reports its metrics.
func SortIntegers(ctx context.Context, algorithm alg.Algorithm, data []int, rec RunRecorder) (IntSortRun, error) {
	run := metrics.NewAggregator().Begin(algorithm)

	sorted, err := sorting.Sort(algorithm, data, cmp.Compare[int], &run.Counters)
	if err != nil {
		return IntSortRun{}, err
	}

	res := run.Finish()
	if rec != nil {
		rec.RecordRun(ctx, res, len(data))
	}

	return IntSortRun{Result: res, Sorted: sorted}, nil
}

// IntSearchRun is the outcome of SearchIntegers.
type IntSearchRun struct {
	Result  metrics.Result    `json:"result"`
	Status  Status            `json:"status"`
	Index   int               `json:"index"`
	Presort *metrics.Counters `json:"presort,omitempty"`
}

// SearchIntegers binary searches data for the parsed term. An unparseable
// term ends with StatusInvalidInput and zero counters. Unsorted data is
// sorted first when presort is set and rejected with search.ErrUnsorted
// otherwise.
func SearchIntegers(ctx context.Context, data []int, term string, presort bool, rec RunRecorder) (IntSearchRun, error) {
	target, err := ParseIntTarget(term)
	if err != nil {
		return IntSearchRun{
			Result: metrics.Result{Algorithm: alg.BinarySearch, Swaps: metrics.SwapsNotApplicable()},
			Status: StatusInvalidInput,
			Index:  -1,
		}, nil
	}

	var opts []search.Option
	if presort {
		opts = append(opts, search.WithPresort(alg.MergeSort))
	}

	run := metrics.NewAggregator().Begin(alg.BinarySearch)

	found, err := search.Find(data, cmp.Compare[int], func(v int) int { return cmp.Compare(v, target) },
		&run.Counters, opts...)
	if err != nil {
		return IntSearchRun{}, err
	}

	res := run.Finish()
	if rec != nil {
		rec.RecordRun(ctx, res, len(data))
	}

	out := IntSearchRun{Result: res, Status: StatusNotFound, Index: found.Index}
	if found.Found {
		out.Status = StatusFound
	}

	if found.Presorted {
		p := found.Presort
		out.Presort = &p
	}

	return out, nil
}
