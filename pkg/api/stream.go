package api

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/alg/search"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

// StreamEvent is one NDJSON line of a /visualize stream. Exactly one field
// is set; the outcome is always the last line.
type StreamEvent struct {
	Snapshot *visualize.Snapshot `json:"snapshot,omitempty"`
	Outcome  *visualize.Outcome  `json:"outcome,omitempty"`
}

type visualizeParams struct {
	request visualize.Request
	data    []int
	delays  visualize.Delays
}

// parseVisualize reads ?algorithm, ?n, ?target, ?presort, ?seed and ?speed.
// Binary search presorts by default since generated data is shuffled.
func (h *handler) parseVisualize(r *http.Request) (visualizeParams, *ErrorBody) {
	params := r.URL.Query()

	algorithm, err := alg.Parse(params.Get("algorithm"))
	if err != nil {
		return visualizeParams{}, badRequest(err.Error())
	}

	n := h.opts.ArraySize

	if raw := params.Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.opts.MaxArraySize {
			return visualizeParams{}, badRequest(
				"n must be an integer in [1, " + strconv.Itoa(h.opts.MaxArraySize) + "]")
		}
	}

	req := visualize.Request{Algorithm: algorithm, Presort: true}

	if algorithm == alg.BinarySearch {
		target, parseErr := query.ParseIntTarget(params.Get("target"))
		if parseErr != nil {
			body := badRequest(parseErr.Error())
			body.Status = string(query.StatusInvalidInput)

			return visualizeParams{}, body
		}

		req.Target = &target
	}

	if raw := params.Get("presort"); raw != "" {
		req.Presort, err = strconv.ParseBool(raw)
		if err != nil {
			return visualizeParams{}, badRequest("presort must be a boolean")
		}
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	if raw := params.Get("seed"); raw != "" {
		seed, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return visualizeParams{}, badRequest("seed must be an unsigned integer")
		}

		rng = rand.New(rand.NewPCG(seed, seed))
	}

	delays := h.opts.Delays

	if raw := params.Get("speed"); raw != "" {
		speed, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil || speed <= 0 {
			return visualizeParams{}, badRequest("speed must be a positive number")
		}

		delays = delays.Scale(1 / speed)
	}

	return visualizeParams{request: req, data: query.RandomIntegers(n, rng), delays: delays}, nil
}

func badRequest(message string) *ErrorBody {
	return &ErrorBody{Error: http.StatusText(http.StatusBadRequest), Message: message}
}

// handleVisualize streams one visualizer run as NDJSON. The response starts
// with the first snapshot, so a run rejected before its first step still
// gets a JSON error. A client disconnect stops the run.
func (h *handler) handleVisualize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, body := h.parseVisualize(r)
	if body != nil {
		writeJSON(ctx, w, http.StatusBadRequest, body)

		return
	}

	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	started := false

	send := func(ev StreamEvent) {
		if !started {
			w.Header().Set("Content-Type", contentTypeNDJSON)
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)

			started = true
		}

		err := enc.Encode(ev)
		if err != nil {
			return
		}

		_ = rc.Flush()
	}

	publish := func(s visualize.Snapshot) {
		_, span := h.tracer.Start(ctx, observability.SpanVisualizeStep, trace.WithAttributes(
			attribute.String("algorithm", string(s.Algorithm)),
			attribute.Int64("steps", s.Step),
			attribute.String("visualize.phase", string(s.Phase)),
		))
		span.End()

		send(StreamEvent{Snapshot: &s})
	}

	v := visualize.New(p.data, visualize.WithDelays(p.delays), visualize.WithLogger(h.logger))

	out, err := v.Run(ctx, p.request, publish)
	if err != nil {
		if started {
			h.logger.ErrorContext(ctx, "visualize stream failed", "error", err)

			return
		}

		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrUnsorted) || errors.Is(err, track.ErrInvalidTarget) ||
			errors.Is(err, visualize.ErrNoTarget) || errors.Is(err, alg.ErrUnknownAlgorithm) {
			status = http.StatusBadRequest
		}

		writeError(ctx, w, status, err.Error())

		return
	}

	h.opts.Algorithms.RecordVisualization(ctx, out.Algorithm, string(out.Status), out.Steps)

	if out.Status == visualize.StatusStopped {
		h.logger.InfoContext(ctx, "visualize stream stopped by client", "steps", out.Steps)

		return
	}

	send(StreamEvent{Outcome: &out})
}
