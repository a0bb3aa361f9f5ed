// Package query runs the engine against a loaded track catalog the way the
// search and sort page does: sorts reorder the current view, searches look up
// a single track in the original data, and Reset restores the original.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/sorting"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const tracerName = "github.com/Sumatoshi-tech/tracksort/pkg/query"

// RunRecorder receives every finished run. observability.AlgorithmMetrics
// implements it.
type RunRecorder interface {
	RecordRun(ctx context.Context, res metrics.Result, records int)
}

// SortRun is the outcome of Runner.Sort.
type SortRun struct {
	Algorithm   alg.Algorithm     `json:"algorithm"`
	Field       track.Field       `json:"field"`
	Comparisons int64             `json:"comparisons"`
	Swaps       metrics.SwapCount `json:"swaps"`
	ElapsedMs   float64           `json:"elapsedMs"`
	ResultData  []track.Track     `json:"resultData"`
}

// SearchRun is the outcome of Runner.Search.
type SearchRun struct {
	Algorithm   alg.Algorithm     `json:"algorithm"`
	Field       track.Field       `json:"field"`
	SearchTerm  string            `json:"searchTerm"`
	Comparisons int64             `json:"comparisons"`
	Swaps       metrics.SwapCount `json:"swaps"`
	ElapsedMs   float64           `json:"elapsedMs"`
	ResultData  *track.Track      `json:"resultData"`
	Found       bool              `json:"found"`
	Status      Status            `json:"status"`

	// Presort is the cost of ordering the data by the search field first.
	Presort *metrics.Counters `json:"presort,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder reports finished runs to rec.
func WithRecorder(rec RunRecorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPresortAlgorithm selects the sort used to order data before a search.
func WithPresortAlgorithm(a alg.Algorithm) Option {
	return func(r *Runner) { r.presort = a }
}

// Runner holds the original and current record sets plus the last sort and
// search outcomes. It is safe for concurrent use.
type Runner struct {
	mu         sync.Mutex
	original   []track.Track
	current    []track.Track
	lastSort   *SortRun
	lastSearch *SearchRun

	agg      *metrics.Aggregator
	recorder RunRecorder
	presort  alg.Algorithm
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewRunner creates a runner over tracks.
func NewRunner(tracks []track.Track, opts ...Option) *Runner {
	r := &Runner{
		original: slices.Clone(tracks),
		current:  slices.Clone(tracks),
		agg:      metrics.NewAggregator(),
		presort:  alg.MergeSort,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Sort orders the current view by field. The sorted result becomes the
// current view and the last sort.
func (r *Runner) Sort(ctx context.Context, algorithm alg.Algorithm, field track.Field) (SortRun, error) {
	if !algorithm.IsSort() {
		return SortRun{}, fmt.Errorf("%w: %q is not a sort", alg.ErrUnknownAlgorithm, algorithm)
	}

	field, err := track.ParseField(string(field))
	if err != nil {
		return SortRun{}, err
	}

	ctx, span := r.tracer.Start(ctx, "query.Sort", trace.WithAttributes(
		attribute.String("algorithm", string(algorithm)),
		attribute.String("field", string(field)),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	input := r.current
	run := r.agg.Begin(algorithm)

	sorted, err := sorting.Sort(algorithm, input, track.Comparator(field), &run.Counters)
	if err != nil {
		return SortRun{}, err
	}

	if sorted == nil {
		sorted = []track.Track{}
	}

	res := run.Finish()

	out := SortRun{
		Algorithm:   algorithm,
		Field:       field,
		Comparisons: res.Comparisons,
		Swaps:       res.Swaps,
		ElapsedMs:   res.ElapsedMs,
		ResultData:  sorted,
	}

	r.current = sorted
	r.lastSort = &out

	span.SetAttributes(attribute.Int64("comparisons", res.Comparisons))
	r.record(ctx, res, len(input))

	return out, nil
}

// Search looks term up in the original data with binary search. Integer terms
// search by id, anything else by name, case-insensitively. The data is
// presorted by the search field and that cost is reported separately. The
// current view becomes the match alone, or empty.
func (r *Runner) Search(ctx context.Context, term string) (SearchRun, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchRun{}, ErrEmptyTerm
	}

	field := SearchField(term)

	probe, err := track.Probe(field, term)
	if err != nil {
		return SearchRun{}, err
	}

	ctx, span := r.tracer.Start(ctx, "query.Search", trace.WithAttributes(
		attribute.String("field", string(field)),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.agg.Begin(alg.BinarySearch)

	found, err := search.Find(r.original, track.Comparator(field), probe, &run.Counters, search.WithPresort(r.presort))
	if err != nil {
		return SearchRun{}, fmt.Errorf("search %s: %w", field, err)
	}

	res := run.Finish()

	out := SearchRun{
		Algorithm:   alg.BinarySearch,
		Field:       field,
		SearchTerm:  term,
		Comparisons: res.Comparisons,
		Swaps:       res.Swaps,
		ElapsedMs:   res.ElapsedMs,
		Found:       found.Found,
		Status:      StatusNotFound,
	}

	if found.Presorted {
		presort := found.Presort
		out.Presort = &presort
	}

	r.current = []track.Track{}

	if found.Found {
		match := found.Record
		out.ResultData = &match
		out.Status = StatusFound
		r.current = []track.Track{match}
	}

	r.lastSearch = &out

	span.SetAttributes(attribute.Bool("found", out.Found), attribute.Int64("comparisons", res.Comparisons))
	r.record(ctx, res, len(r.original))

	return out, nil
}

// Reset restores the original data and clears the last runs.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = slices.Clone(r.original)
	r.lastSort = nil
	r.lastSearch = nil
	r.agg.Reset()
}

// SetData replaces the dataset and clears the last runs.
func (r *Runner) SetData(tracks []track.Track) {
	r.mu.Lock()
	r.original = slices.Clone(tracks)
	r.mu.Unlock()

	r.Reset()
}

// Current returns a copy of the current view.
func (r *Runner) Current() []track.Track {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.current)
}

// Original returns a copy of the loaded data.
func (r *Runner) Original() []track.Track {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.original)
}

// Displayed returns the first size tracks of the current view.
func (r *Runner) Displayed(size Size) []track.Track {
	r.mu.Lock()
	defer r.mu.Unlock()

	return size.Apply(r.current)
}

// LastSort returns the most recent sort, if any.
func (r *Runner) LastSort() (SortRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastSort == nil {
		return SortRun{}, false
	}

	return *r.lastSort, true
}

// LastSearch returns the most recent search, if any.
func (r *Runner) LastSearch() (SearchRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastSearch == nil {
		return SearchRun{}, false
	}

	return *r.lastSearch, true
}

func (r *Runner) record(ctx context.Context, res metrics.Result, records int) {
	r.logger.DebugContext(ctx, "query: run finished",
		"algorithm", res.Algorithm, "records", records,
		"comparisons", res.Comparisons, "swaps", res.Swaps.String(), "elapsed_ms", res.ElapsedMs)

	if r.recorder != nil {
		r.recorder.RecordRun(ctx, res, records)
	}
}

// SearchField picks the field a term searches: id for integers, name otherwise.
func SearchField(term string) track.Field {
	_, err := strconv.ParseInt(strings.TrimSpace(term), 10, 64)
	if err == nil {
		return track.FieldID
	}

	return track.FieldName
}
