package visualize

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

// stepper owns the working array of one run and turns each mutation into a
// published snapshot followed by a cancellable pause.
type stepper struct {
	ctx       context.Context
	algorithm alg.Algorithm
	arr       []int
	counters  metrics.Counters
	step      int64
	delays    Delays
	publish   Publisher
}

// check returns ErrStopped once the run context is done.
func (s *stepper) check() error {
	if s.ctx.Err() != nil {
		return ErrStopped
	}

	return nil
}

// emit publishes the current state and pauses for the phase delay. Callers
// check the context before charging a step, so every charged step is
// published exactly once.
func (s *stepper) emit(phase Phase, active []int, pointers map[string]int) error {
	s.step++

	if s.publish != nil {
		s.publish(Snapshot{
			Step:      s.step,
			Algorithm: s.algorithm,
			Array:     slices.Clone(s.arr),
			Active:    slices.Clone(active),
			Pointers:  maps.Clone(pointers),
			Phase:     phase,
			Metrics:   s.counters,
		})
	}

	return s.pause(s.delays.forPhase(phase))
}

func (s *stepper) pause(d time.Duration) error {
	if d <= 0 {
		return s.check()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return ErrStopped
	case <-timer.C:
	}

	return s.check()
}

// final charges the terminal step and publishes its snapshot: pointers and
// phase cleared, metrics kept.
func (s *stepper) final(found *int) {
	s.step++

	if s.publish == nil {
		return
	}

	s.publish(Snapshot{
		Step:      s.step,
		Algorithm: s.algorithm,
		Array:     slices.Clone(s.arr),
		Phase:     PhaseNone,
		Metrics:   s.counters,
		Final:     true,
		Found:     found,
	})
}
