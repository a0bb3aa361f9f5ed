// Package visualize replays sort and search algorithms step by step.
//
// A Visualizer runs one traced algorithm at a time over a working copy of
// its integer dataset. Every atomic step publishes an immutable Snapshot to
// the caller and then pauses for a per-phase delay, so a consumer can render
// the run as an animation or stream it to a client. Runs are cancellable at
// any step boundary.
package visualize

import (
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
)

// Phase names the kind of step a snapshot captures.
type Phase string

// Step phases. PhaseNone marks the terminal snapshot of a run.
const (
	PhaseNone    Phase = ""
	PhaseCompare Phase = "compare"
	PhaseSwap    Phase = "swap"
	PhaseWrite   Phase = "write"
	PhaseBisect  Phase = "bisect"
)

// Pointer names carried in Snapshot.Pointers.
const (
	PointerI     = "i"
	PointerJ     = "j"
	PointerPivot = "pivot"
	PointerLeft  = "L"
	PointerRight = "R"
	PointerK     = "k"
	PointerLow   = "low"
	PointerMid   = "mid"
	PointerHigh  = "high"
)

// Snapshot is the observable state after one step. Snapshots never share
// memory with the working array or with each other.
type Snapshot struct {
	Step      int64            `json:"step"`
	Algorithm alg.Algorithm    `json:"algorithm"`
	Array     []int            `json:"array"`
	Active    []int            `json:"active,omitempty"`
	Pointers  map[string]int   `json:"pointers,omitempty"`
	Phase     Phase            `json:"phase"`
	Metrics   metrics.Counters `json:"metrics"`

	// Final is set on the snapshot published when a run completes.
	Final bool `json:"final,omitempty"`

	// Found is the matching index of a completed binary search, if any.
	Found *int `json:"found,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Array = slices.Clone(s.Array)
	out.Active = slices.Clone(s.Active)

	out.Pointers = maps.Clone(s.Pointers)

	if s.Found != nil {
		found := *s.Found
		out.Found = &found
	}

	return out
}

// Publisher receives snapshots in step order. It is called synchronously from
// the running trace and must not block for long.
type Publisher func(Snapshot)
