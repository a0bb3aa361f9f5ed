package metrics

import (
	"sync"
	"time"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
)

// msPerSecond converts seconds to milliseconds.
const msPerSecond = 1000

// Result is the frozen metrics of one completed run.
type Result struct {
	Algorithm   alg.Algorithm `json:"algorithm"`
	Comparisons int64         `json:"comparisons"`
	Swaps       SwapCount     `json:"swaps"`
	ElapsedMs   float64       `json:"elapsedMs"`
}

// Run is an in-flight measurement. Counters is passed by pointer into the
// algorithm; Finish reads it back once the call has returned.
type Run struct {
	Counters Counters

	algorithm alg.Algorithm
	started   time.Time
	agg       *Aggregator
}

// Aggregator scopes counters and elapsed time to one run at a time and keeps
// the last completed result until it is superseded or reset.
type Aggregator struct {
	mu   sync.Mutex
	last *Result
	now  func() time.Time
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{now: time.Now}
}

// Begin starts a run with fresh counters.
func (a *Aggregator) Begin(algorithm alg.Algorithm) *Run {
	return &Run{
		algorithm: algorithm,
		started:   a.now(),
		agg:       a,
	}
}

// Finish freezes the run. The result replaces the aggregator's previous one.
func (r *Run) Finish() Result {
	elapsed := r.agg.now().Sub(r.started)

	res := Result{
		Algorithm:   r.algorithm,
		Comparisons: r.Counters.Comparisons,
		Swaps:       SwapsNotApplicable(),
		ElapsedMs:   DurationMs(elapsed),
	}

	if r.algorithm.HasSwaps() {
		res.Swaps = Swaps(r.Counters.Swaps)
	}

	r.agg.mu.Lock()
	r.agg.last = &res
	r.agg.mu.Unlock()

	return res
}

// Last returns the most recent result, if any.
func (a *Aggregator) Last() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last == nil {
		return Result{}, false
	}

	return *a.last, true
}

// Reset drops the last result. Called when the algorithm or dataset changes.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()
}

// DurationMs converts a duration to fractional milliseconds.
func DurationMs(d time.Duration) float64 {
	return d.Seconds() * msPerSecond
}
