package visualize

import (
	"errors"
	"time"
)

// State is the lifecycle position of a Visualizer.
type State int

// Visualizer states. Completed and Stopped accept a new run exactly like Idle.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateStopped
)

var stateNames = [...]string{"idle", "running", "completed", "stopped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "unknown"
}

// Status is the terminal outcome of a run.
type Status string

// Run statuses.
const (
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Sentinel errors.
var (
	// ErrStopped is the cancellation cause of a stopped run. Traced algorithms
	// return it to unwind; Run reports it as StatusStopped rather than as an error.
	ErrStopped = errors.New("visualization stopped")

	// ErrBusy is returned by Run while another run is in progress.
	ErrBusy = errors.New("visualization already running")

	// ErrNoTarget is returned for a binary search request without a target.
	ErrNoTarget = errors.New("binary search needs a target")
)

// Default per-phase delays, matching the pacing of the web visualizer.
const (
	DefaultCompareDelay = 200 * time.Millisecond
	DefaultSwapDelay    = 300 * time.Millisecond
	DefaultWriteDelay   = 300 * time.Millisecond
	DefaultBisectDelay  = 150 * time.Millisecond
)

// Delays holds the pause applied after each phase.
type Delays struct {
	Compare time.Duration `json:"compare" mapstructure:"compare"`
	Swap    time.Duration `json:"swap"    mapstructure:"swap"`
	Write   time.Duration `json:"write"   mapstructure:"write"`
	Bisect  time.Duration `json:"bisect"  mapstructure:"bisect"`
}

// DefaultDelays returns the standard pacing.
func DefaultDelays() Delays {
	return Delays{
		Compare: DefaultCompareDelay,
		Swap:    DefaultSwapDelay,
		Write:   DefaultWriteDelay,
		Bisect:  DefaultBisectDelay,
	}
}

// Scale multiplies every delay by factor. A zero factor disables pauses.
func (d Delays) Scale(factor float64) Delays {
	scale := func(v time.Duration) time.Duration { return time.Duration(float64(v) * factor) }

	return Delays{
		Compare: scale(d.Compare),
		Swap:    scale(d.Swap),
		Write:   scale(d.Write),
		Bisect:  scale(d.Bisect),
	}
}

func (d Delays) forPhase(p Phase) time.Duration {
	switch p {
	case PhaseCompare:
		return d.Compare
	case PhaseSwap:
		return d.Swap
	case PhaseWrite:
		return d.Write
	case PhaseBisect:
		return d.Bisect
	default:
		return 0
	}
}
