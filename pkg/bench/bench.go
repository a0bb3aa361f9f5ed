// Package bench measures comparisons, swaps and elapsed time of every
// algorithm over shuffled integer datasets of increasing size.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/stats"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
)

// Defaults.
const (
	DefaultRepeat = 5
	DefaultSeed   = 42
)

// DefaultSizes are the dataset sizes measured when none are given.
var DefaultSizes = []int{10, 100, 1000, 10000}

// Sentinel errors.
var (
	ErrInvalidSize   = errors.New("benchmark size must be positive")
	ErrInvalidRepeat = errors.New("benchmark repeat must be positive")
)

// Options selects what Run measures.
type Options struct {
	Sizes      []int
	Algorithms []alg.Algorithm
	Repeat     int
	Seed       uint64

	// Recorder receives every individual run.
	Recorder query.RunRecorder
}

// Point is the aggregate of Repeat runs of one algorithm at one size.
// Comparisons and Swaps are means; Swaps is meaningful only when HasSwaps.
type Point struct {
	Algorithm   alg.Algorithm `json:"algorithm"`
	Size        int           `json:"size"`
	Comparisons float64       `json:"comparisons"`
	Swaps       float64       `json:"swaps"`
	HasSwaps    bool          `json:"hasSwaps"`
	ElapsedMs   stats.Summary `json:"elapsedMs"`
}

func (o Options) withDefaults() Options {
	if len(o.Sizes) == 0 {
		o.Sizes = DefaultSizes
	}

	if len(o.Algorithms) == 0 {
		o.Algorithms = alg.All()
	}

	if o.Repeat == 0 {
		o.Repeat = DefaultRepeat
	}

	return o
}

func (o Options) validate() error {
	if o.Repeat < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRepeat, o.Repeat)
	}

	for _, n := range o.Sizes {
		if n <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidSize, n)
		}
	}

	return nil
}

// Run measures every algorithm at every size. Points are ordered by size,
// then by algorithm in the order given. Binary search presorts its data and
// looks up a value drawn from the dataset; only the search itself is counted.
func Run(ctx context.Context, opts Options) ([]Point, error) {
	opts = opts.withDefaults()

	err := opts.validate()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	points := make([]Point, 0, len(opts.Sizes)*len(opts.Algorithms))

	for _, n := range opts.Sizes {
		for _, a := range opts.Algorithms {
			p, err := measure(ctx, a, n, opts, rng)
			if err != nil {
				return nil, fmt.Errorf("bench %s n=%d: %w", a, n, err)
			}

			points = append(points, p)
		}
	}

	return points, nil
}

func measure(ctx context.Context, a alg.Algorithm, n int, opts Options, rng *rand.Rand) (Point, error) {
	comparisons := make([]float64, 0, opts.Repeat)
	swaps := make([]float64, 0, opts.Repeat)
	elapsed := make([]float64, 0, opts.Repeat)

	for range opts.Repeat {
		err := ctx.Err()
		if err != nil {
			return Point{}, err
		}

		data := query.RandomIntegers(n, rng)

		if a.IsSort() {
			run, err := query.SortIntegers(ctx, a, data, opts.Recorder)
			if err != nil {
				return Point{}, err
			}

			s, _ := run.Result.Swaps.Value()
			comparisons = append(comparisons, float64(run.Result.Comparisons))
			swaps = append(swaps, float64(s))
			elapsed = append(elapsed, run.Result.ElapsedMs)

			continue
		}

		target := strconv.Itoa(data[rng.IntN(n)])

		run, err := query.SearchIntegers(ctx, data, target, true, opts.Recorder)
		if err != nil {
			return Point{}, err
		}

		comparisons = append(comparisons, float64(run.Result.Comparisons))
		elapsed = append(elapsed, run.Result.ElapsedMs)
	}

	return Point{
		Algorithm:   a,
		Size:        n,
		Comparisons: stats.Mean(comparisons),
		Swaps:       stats.Mean(swaps),
		HasSwaps:    a.HasSwaps(),
		ElapsedMs:   stats.Summarize(elapsed),
	}, nil
}
