package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	healthOK           = "OK"
	fetchFailedMessage = "Failed to fetch data from database"
)

// HealthBody is the /health response.
type HealthBody struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Database  catalog.PoolStatus `json:"database"`
}

func (h *handler) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.opts.Store == nil {
		writeError(ctx, w, http.StatusInternalServerError, fetchFailedMessage)

		return
	}

	tracks, err := h.opts.Store.All(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch collections failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, fetchFailedMessage)

		return
	}

	writeJSON(ctx, w, http.StatusOK, tracks)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := catalog.PoolStatus{Status: catalog.PoolNotInitialized}
	if h.opts.Store != nil {
		status = h.opts.Store.PoolStatus()
	}

	writeJSON(r.Context(), w, http.StatusOK, HealthBody{
		Status:    healthOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Database:  status,
	})
}

// load reads the catalog into a fresh runner. It writes the error response
// itself and returns nil when the catalog cannot be read.
func (h *handler) load(w http.ResponseWriter, r *http.Request) *query.Runner {
	ctx := r.Context()

	var src query.Source
	if h.opts.Store != nil {
		src = h.opts.Store
	}

	ds := query.Load(ctx, src, h.logger)
	if ds.Err != nil {
		writeError(ctx, w, http.StatusInternalServerError, fetchFailedMessage)

		return nil
	}

	opts := []query.Option{
		query.WithLogger(h.logger),
		query.WithPresortAlgorithm(h.opts.PresortAlgorithm),
	}

	if h.opts.Algorithms != nil {
		opts = append(opts, query.WithRecorder(h.opts.Algorithms))
	}

	return query.NewRunner(ds.Tracks, opts...)
}

func parseSize(r *http.Request) (query.Size, error) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return query.SizeAll, nil
	}

	return query.ParseSize(raw)
}

func (h *handler) handleSort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	algorithm, err := alg.Parse(params.Get("algorithm"))
	if err != nil || !algorithm.IsSort() {
		writeError(ctx, w, http.StatusBadRequest, "algorithm must be quickSort or mergeSort")

		return
	}

	field, err := track.ParseField(params.Get("field"))
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())

		return
	}

	size, err := parseSize(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())

		return
	}

	runner := h.load(w, r)
	if runner == nil {
		return
	}

	run, err := runner.Sort(ctx, algorithm, field)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())

		return
	}

	run.ResultData = size.Apply(run.ResultData)

	writeJSON(ctx, w, http.StatusOK, run)
}

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runner := h.load(w, r)
	if runner == nil {
		return
	}

	run, err := runner.Search(ctx, r.URL.Query().Get("term"))
	if err != nil {
		if errors.Is(err, query.ErrEmptyTerm) {
			writeError(ctx, w, http.StatusBadRequest, err.Error())

			return
		}

		h.logger.ErrorContext(ctx, "search failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(ctx, w, http.StatusOK, run)
}

func (h *handler) handleFind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	if h.opts.Index == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "lookup index is not loaded")

		return
	}

	limit := 0

	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(ctx, w, http.StatusBadRequest, "limit must be a non-negative integer")

			return
		}

		limit = n
	}

	hits, err := h.opts.Index.Find(ctx, params.Get("q"), limit)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyQuery) {
			writeError(ctx, w, http.StatusBadRequest, err.Error())

			return
		}

		writeError(ctx, w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(ctx, w, http.StatusOK, hits)
}
