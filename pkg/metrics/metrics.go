// Package metrics measures algorithm runs: per-run comparison and swap
// counters, elapsed time, and derived metrics computed from finished runs.
//
// Each derived metric is a computation unit that:
//   - Declares its input requirements
//   - Computes a typed output
//   - Provides metadata for documentation and serialization
package metrics

import (
	"math"
	"math/bits"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
)

// Metric is the core interface that all derived metrics must implement.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for reports.
	DisplayName() string

	// Description returns what the metric measures and how to read it.
	Description() string

	// Type returns the metric category (e.g., "ratio", "bound").
	Type() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// Conditional is implemented by metrics that only apply to some runs.
type Conditional interface {
	Applies(s Sample) bool
}

// Sample pairs a finished run with the size of the dataset it ran on.
type Sample struct {
	N      int
	Result Result
}

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Type returns the metric category.
func (m MetricMeta) Type() string { return m.MetricType }

// Registry holds a collection of metrics that can be computed together.
type Registry struct {
	metrics map[string]any // name -> Metric[any, any].
	order   []string
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]any)}
}

// Register adds a metric to the registry. Re-registering a name replaces
// the metric and keeps its position.
func Register[In, Out any](r *Registry, m Metric[In, Out]) {
	if _, ok := r.metrics[m.Name()]; !ok {
		r.order = append(r.order, m.Name())
	}

	r.metrics[m.Name()] = m
}

// Get retrieves a metric by name.
func (r *Registry) Get(name string) (any, bool) {
	m, ok := r.metrics[name]

	return m, ok
}

// Names returns all registered metric names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Value is one derived metric computed for a run.
type Value struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
}

// Derive computes every registered run metric that applies to s, in
// registration order. Metrics over other inputs are skipped.
func (r *Registry) Derive(s Sample) []Value {
	out := make([]Value, 0, len(r.order))

	for _, name := range r.order {
		m, ok := r.metrics[name].(Metric[Sample, float64])
		if !ok {
			continue
		}

		if c, isConditional := m.(Conditional); isConditional && !c.Applies(s) {
			continue
		}

		out = append(out, Value{
			Name:        m.Name(),
			DisplayName: m.DisplayName(),
			Type:        m.Type(),
			Value:       m.Compute(s),
		})
	}

	return out
}

// Metric types.
const (
	TypeRatio = "ratio"
	TypeBound = "bound"
)

// Metric names.
const (
	NameComparisonsPerRecord = "comparisons_per_record"
	NameSwapRatio            = "swap_ratio"
	NameSearchBound          = "search_comparison_bound"
)

// ComparisonsPerRecord divides the comparison total by the dataset size.
type ComparisonsPerRecord struct{ MetricMeta }

// NewComparisonsPerRecord creates the comparisons-per-record metric.
func NewComparisonsPerRecord() *ComparisonsPerRecord {
	return &ComparisonsPerRecord{MetricMeta{
		MetricName:        NameComparisonsPerRecord,
		MetricDisplayName: "Comparisons per record",
		MetricDescription: "Comparisons charged to the run divided by the number of input records. " +
			"Zero for empty inputs.",
		MetricType: TypeRatio,
	}}
}

// Compute implements Metric.
func (m *ComparisonsPerRecord) Compute(s Sample) float64 {
	if s.N == 0 {
		return 0
	}

	return float64(s.Result.Comparisons) / float64(s.N)
}

// SwapRatio divides swaps by comparisons. Runs without applicable swaps yield NaN.
type SwapRatio struct{ MetricMeta }

// NewSwapRatio creates the swap ratio metric.
func NewSwapRatio() *SwapRatio {
	return &SwapRatio{MetricMeta{
		MetricName:        NameSwapRatio,
		MetricDisplayName: "Swap ratio",
		MetricDescription: "Relocations per comparison. NaN when swaps are not applicable to the algorithm, " +
			"zero when no comparison was made.",
		MetricType: TypeRatio,
	}}
}

// Applies reports whether the run counted swaps.
func (m *SwapRatio) Applies(s Sample) bool {
	_, ok := s.Result.Swaps.Value()

	return ok
}

// Compute implements Metric.
func (m *SwapRatio) Compute(s Sample) float64 {
	swaps, ok := s.Result.Swaps.Value()
	if !ok {
		return math.NaN()
	}

	if s.Result.Comparisons == 0 {
		return 0
	}

	return float64(swaps) / float64(s.Result.Comparisons)
}

// SearchBound is the worst-case binary search comparison count for n records.
type SearchBound struct{ MetricMeta }

// NewSearchBound creates the binary search bound metric.
func NewSearchBound() *SearchBound {
	return &SearchBound{MetricMeta{
		MetricName:        NameSearchBound,
		MetricDisplayName: "Search comparison bound",
		MetricDescription: "ceil(log2 n) + 1, the most comparisons a binary search over n sorted records may make.",
		MetricType:        TypeBound,
	}}
}

// Applies reports whether the run was a binary search.
func (m *SearchBound) Applies(s Sample) bool {
	return s.Result.Algorithm == alg.BinarySearch
}

// Compute implements Metric.
func (m *SearchBound) Compute(s Sample) float64 {
	return float64(SearchComparisonBound(s.N))
}

// SearchComparisonBound returns ceil(log2 n) + 1, or 0 for n <= 0.
func SearchComparisonBound(n int) int {
	if n <= 0 {
		return 0
	}

	return bits.Len(uint(n-1)) + 1
}

// DefaultRegistry returns a registry with every derived run metric.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	Register[Sample, float64](r, NewComparisonsPerRecord())
	Register[Sample, float64](r, NewSwapRatio())
	Register[Sample, float64](r, NewSearchBound())

	return r
}
