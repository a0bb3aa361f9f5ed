package metrics

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// notApplicable is the placeholder rendered for swap totals of algorithms
// that never relocate records.
const notApplicable = "N/A"

// Counters is the mutable accumulator for one algorithm run. A single
// instance is shared by the whole recursive call tree of that run and must
// not be shared across runs. All methods are safe on a nil receiver, which
// turns counting off.
type Counters struct {
	Comparisons int64 `json:"comparisons"`
	Swaps       int64 `json:"swaps"`
}

// Compare charges one comparison.
func (c *Counters) Compare() {
	if c == nil {
		return
	}

	c.Comparisons++
}

// Swap charges n relocations. Negative n is ignored so counters never decrease.
func (c *Counters) Swap(n int) {
	if c == nil || n <= 0 {
		return
	}

	c.Swaps += int64(n)
}

// Snapshot returns a copy of the current totals.
func (c *Counters) Snapshot() Counters {
	if c == nil {
		return Counters{}
	}

	return *c
}

// Reset zeroes both counters.
func (c *Counters) Reset() {
	if c == nil {
		return
	}

	*c = Counters{}
}

// SwapCount is a swap total that may be "not applicable". It distinguishes an
// algorithm that performed zero swaps from one where swaps are meaningless.
type SwapCount struct {
	value      int64
	applicable bool
}

// Swaps wraps a measured swap total.
func Swaps(n int64) SwapCount {
	return SwapCount{value: n, applicable: true}
}

// SwapsNotApplicable returns the placeholder used by search algorithms.
func SwapsNotApplicable() SwapCount {
	return SwapCount{}
}

// Value returns the total and whether it is applicable.
func (s SwapCount) Value() (int64, bool) {
	return s.value, s.applicable
}

// String renders the total or "N/A".
func (s SwapCount) String() string {
	if !s.applicable {
		return notApplicable
	}

	return strconv.FormatInt(s.value, 10)
}

// MarshalJSON encodes applicable totals as numbers and the rest as "N/A".
func (s SwapCount) MarshalJSON() ([]byte, error) {
	if !s.applicable {
		return json.Marshal(notApplicable)
	}

	return json.Marshal(s.value)
}

// UnmarshalJSON accepts either a number or the "N/A" placeholder.
func (s *SwapCount) UnmarshalJSON(data []byte) error {
	var raw any

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decode swap count: %w", err)
	}

	switch v := raw.(type) {
	case float64:
		*s = Swaps(int64(v))
	case string:
		if v != notApplicable {
			return fmt.Errorf("decode swap count: unexpected %q", v)
		}

		*s = SwapsNotApplicable()
	default:
		*s = SwapsNotApplicable()
	}

	return nil
}
