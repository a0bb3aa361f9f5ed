package visualize

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/sorting"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

// Request selects what a run traces.
type Request struct {
	Algorithm alg.Algorithm

	// Target is the value searched for. Only used by binary search.
	Target *int

	// Presort sorts the working copy before a binary search instead of
	// rejecting unsorted data.
	Presort bool
}

// Outcome describes a finished run.
type Outcome struct {
	Algorithm alg.Algorithm  `json:"algorithm"`
	Status    Status         `json:"status"`
	Result    metrics.Result `json:"result"`
	Array     []int          `json:"array"`
	Steps     int64          `json:"steps"`

	// Index is the match of a binary search, -1 when absent.
	Index int  `json:"index"`
	Found bool `json:"found"`

	// Presort is the cost of sorting the working copy before a binary search.
	Presort *metrics.Counters `json:"presort,omitempty"`
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithDelays overrides the per-phase pauses.
func WithDelays(d Delays) Option {
	return func(v *Visualizer) { v.delays = d }
}

// WithLogger sets the logger used for run lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(v *Visualizer) {
		if l != nil {
			v.logger = l
		}
	}
}

// Visualizer runs one traced algorithm at a time over its dataset.
// It is safe for concurrent use.
type Visualizer struct {
	mu      sync.Mutex
	state   State
	data    []int
	active  *activeRun
	last    *Outcome
	delays  Delays
	logger  *slog.Logger
	metrics *metrics.Aggregator
}

// activeRun is the cancel func and completion signal of one run. Only the
// run that created it closes done.
type activeRun struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// New creates an idle Visualizer over a copy of data.
func New(data []int, opts ...Option) *Visualizer {
	v := &Visualizer{
		data:    slices.Clone(data),
		delays:  DefaultDelays(),
		logger:  slog.Default(),
		metrics: metrics.NewAggregator(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// State returns the current lifecycle state.
func (v *Visualizer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// Data returns a copy of the dataset. After a run it holds the run's final
// working array.
func (v *Visualizer) Data() []int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return slices.Clone(v.data)
}

// Last returns the outcome of the most recent finished run.
func (v *Visualizer) Last() (Outcome, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.last == nil {
		return Outcome{}, false
	}

	return *v.last, true
}

// Start launches a run in the background. It returns false without side
// effects when a run is already in progress or the request is invalid.
func (v *Visualizer) Start(ctx context.Context, req Request, publish Publisher) bool {
	err := validate(req)
	if err != nil {
		v.logger.Warn("visualize: rejected request", "algorithm", req.Algorithm, "error", err)

		return false
	}

	runCtx, run, work, ok := v.begin(ctx)
	if !ok {
		return false
	}

	go func() {
		_, runErr := v.execute(runCtx, run, req, work, publish)
		if runErr != nil {
			v.logger.Error("visualize: run failed", "algorithm", req.Algorithm, "error", runErr)
		}
	}()

	return true
}

// Run traces req synchronously and returns its outcome. A stopped run is not
// an error: it returns StatusStopped. Run returns ErrBusy while another run
// is in progress.
func (v *Visualizer) Run(ctx context.Context, req Request, publish Publisher) (Outcome, error) {
	err := validate(req)
	if err != nil {
		return Outcome{}, err
	}

	runCtx, run, work, ok := v.begin(ctx)
	if !ok {
		return Outcome{}, ErrBusy
	}

	return v.execute(runCtx, run, req, work, publish)
}

// Stop cancels the run in progress, if any. It does not wait for the run to
// unwind; use Wait for that.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active != nil {
		v.active.cancel(ErrStopped)
	}
}

// Wait blocks until the run in progress, if any, has finished.
func (v *Visualizer) Wait() {
	v.mu.Lock()
	run := v.active
	v.mu.Unlock()

	if run != nil {
		<-run.done
	}
}

// Reset stops any run, waits for it and replaces the dataset. The
// Visualizer returns to Idle and forgets the last outcome. No run started
// concurrently with Reset survives it.
func (v *Visualizer) Reset(data []int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for v.active != nil {
		run := v.active
		run.cancel(ErrStopped)

		v.mu.Unlock()
		<-run.done
		v.mu.Lock()
	}

	v.data = slices.Clone(data)
	v.state = StateIdle
	v.last = nil
	v.metrics.Reset()
}

func validate(req Request) error {
	switch {
	case req.Algorithm.IsSort():
		return nil
	case req.Algorithm == alg.BinarySearch:
		if req.Target == nil {
			return ErrNoTarget
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", alg.ErrUnknownAlgorithm, req.Algorithm)
	}
}

// begin moves to Running and hands out the run context, its handle and the
// working copy.
func (v *Visualizer) begin(parent context.Context) (context.Context, *activeRun, []int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active != nil {
		return nil, nil, nil, false
	}

	ctx, cancel := context.WithCancelCause(parent)
	v.active = &activeRun{cancel: cancel, done: make(chan struct{})}
	v.state = StateRunning

	return ctx, v.active, slices.Clone(v.data), true
}

func (v *Visualizer) execute(
	ctx context.Context, active *activeRun, req Request, work []int, publish Publisher,
) (Outcome, error) {
	s := &stepper{
		ctx:       ctx,
		algorithm: req.Algorithm,
		arr:       work,
		delays:    v.delays,
		publish:   publish,
	}

	run := v.metrics.Begin(req.Algorithm)
	out := Outcome{Algorithm: req.Algorithm, Index: -1}

	var err error

	switch req.Algorithm {
	case alg.QuickSort:
		err = s.quickTrace(0, len(s.arr)-1)
	case alg.MergeSort:
		err = s.mergeTrace(0, len(s.arr))
	case alg.BinarySearch:
		err = v.searchTrace(s, req, &out)
	}

	run.Counters = s.counters
	out.Result = run.Finish()
	out.Array = slices.Clone(s.arr)
	out.Steps = s.step

	switch {
	case errors.Is(err, ErrStopped):
		out.Status = StatusStopped

		v.logger.Info("visualize: run stopped",
			"algorithm", req.Algorithm, "steps", out.Steps, "cause", context.Cause(ctx))
	case err != nil:
		v.finish(active, out, err)

		return Outcome{}, err
	default:
		out.Status = StatusCompleted

		var found *int
		if out.Found {
			found = &out.Index
		}

		s.final(found)
		out.Steps = s.step
	}

	v.finish(active, out, nil)

	return out, nil
}

// searchTrace presorts when asked and then bisects the working copy.
func (v *Visualizer) searchTrace(s *stepper, req Request, out *Outcome) error {
	if !sorting.IsSorted(s.arr, compareInt) {
		if !req.Presort {
			return search.ErrUnsorted
		}

		var presort metrics.Counters

		s.arr = sorting.MergeSort(s.arr, compareInt, &presort)
		out.Presort = &presort
	}

	idx, found, err := s.binaryTrace(*req.Target)
	if err != nil {
		return err
	}

	out.Index, out.Found = idx, found

	return nil
}

// finish records the outcome of run and returns to a resting state. A run
// that failed before tracing leaves the dataset untouched and returns to Idle.
func (v *Visualizer) finish(run *activeRun, out Outcome, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	run.cancel(nil)
	defer close(run.done)

	if v.active != run {
		return
	}

	v.active = nil

	switch {
	case err != nil:
		v.state = StateIdle
	case out.Status == StatusStopped:
		v.state = StateStopped
	default:
		v.state = StateCompleted
	}

	if err == nil {
		v.data = out.Array
		v.last = &out
	}

	v.logger.Debug("visualize: run finished",
		"algorithm", out.Algorithm, "status", out.Status, "steps", out.Steps,
		"elapsed_ms", out.Result.ElapsedMs)
}

func compareInt(a, b int) int {
	return cmp.Compare(a, b)
}
