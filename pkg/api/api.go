// Package api serves the track catalog and the algorithm engine over HTTP.
//
// Routes:
//
//	GET /data        every track row
//	GET /health      status, timestamp and connection pool usage
//	GET /healthz     liveness
//	GET /readyz      readiness (catalog ping)
//	GET /metrics     Prometheus scrape endpoint
//	GET /sort        sort the catalog by ?algorithm= and ?field=
//	GET /search      binary search the catalog for ?term=
//	GET /find        full-text lookup for ?q=
//	GET /visualize   NDJSON stream of visualizer snapshots
//
// Every response carries CORS headers, OPTIONS preflights answer 200 and
// unknown routes answer a JSON 404.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

const (
	defaultAllowOrigin = "*"
	allowMethods       = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders       = "Content-Type, Authorization"

	// DefaultArraySize is the visualizer dataset size when ?n= is absent.
	DefaultArraySize = 10

	// DefaultMaxArraySize caps ?n= on /visualize.
	DefaultMaxArraySize = 500

	contentTypeJSON   = "application/json"
	contentTypeNDJSON = "application/x-ndjson"
)

// Options wires the handler to its collaborators. Only Store is required.
type Options struct {
	Store catalog.Store

	// Index serves /find. Nil answers 503.
	Index *catalog.Index

	Tracer     trace.Tracer
	RED        *observability.REDMetrics
	Algorithms *observability.AlgorithmMetrics

	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler

	Logger *slog.Logger

	// AllowOrigin is the Access-Control-Allow-Origin value. Empty means "*".
	AllowOrigin string

	// Delays paces /visualize streams.
	Delays visualize.Delays

	// PresortAlgorithm orders catalog data before /search.
	PresortAlgorithm alg.Algorithm

	ArraySize    int
	MaxArraySize int
}

type handler struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewHandler builds the routed, instrumented handler.
func NewHandler(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if opts.AllowOrigin == "" {
		opts.AllowOrigin = defaultAllowOrigin
	}

	if opts.PresortAlgorithm == "" {
		opts.PresortAlgorithm = alg.MergeSort
	}

	if opts.ArraySize <= 0 {
		opts.ArraySize = DefaultArraySize
	}

	if opts.MaxArraySize <= 0 {
		opts.MaxArraySize = DefaultMaxArraySize
	}

	h := &handler{opts: opts, logger: opts.Logger, tracer: opts.Tracer}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /data", h.handleData)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(h.ready))
	mux.HandleFunc("GET /sort", h.handleSort)
	mux.HandleFunc("GET /search", h.handleSearch)
	mux.HandleFunc("GET /find", h.handleFind)
	mux.HandleFunc("GET /visualize", h.handleVisualize)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	mux.HandleFunc("/", handleNotFound)

	return observability.HTTPMiddleware(opts.Tracer, opts.RED, h.cors(mux))
}

// cors sets CORS headers on every response and answers preflights.
func (h *handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", h.opts.AllowOrigin)
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Allow-Headers", allowHeaders)

		h.logger.DebugContext(r.Context(), "request", "http.method", r.Method, "http.target", r.URL.Path)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *handler) ready(ctx context.Context) error {
	if h.opts.Store == nil {
		return catalog.ErrNotInitialized
	}

	return h.opts.Store.Ping(ctx)
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, value any) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)

	_, err = w.Write(data)
	if err != nil {
		slog.Default().DebugContext(ctx, "failed to write response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, code int, message string) {
	writeJSON(ctx, w, code, ErrorBody{Error: http.StatusText(code), Message: message})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, http.StatusNotFound, "The requested endpoint does not exist")
}
