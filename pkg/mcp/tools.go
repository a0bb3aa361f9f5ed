package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// Tool name constants.
const (
	ToolNameSort   = "tracks_sort"
	ToolNameSearch = "tracks_search"
	ToolNameFind   = "tracks_find"
)

// Sentinel errors for tool input validation.
var (
	// ErrNotSortAlgorithm indicates the algorithm is not a sort.
	ErrNotSortAlgorithm = errors.New("algorithm must be quickSort or mergeSort")
	// ErrCatalogUnavailable indicates the catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("track catalog is unavailable")
	// ErrNoIndex indicates the lookup index is not loaded.
	ErrNoIndex = errors.New("lookup index is not loaded")
)

// Input types (auto-generate JSON schemas via struct tags).

// SortInput is the input schema for the tracks_sort tool.
type SortInput struct {
	Algorithm string `json:"algorithm"      jsonschema:"quickSort or mergeSort"`
	Field     string `json:"field"          jsonschema:"id, name, artist, album, year, popularity or duration_ms"`
	Size      string `json:"size,omitempty" jsonschema:"number of tracks to return: 10, 20, 30, 50 or all (default all)"`
}

// SearchInput is the input schema for the tracks_search tool.
type SearchInput struct {
	Term string `json:"term" jsonschema:"track id or track name"`
}

// FindInput is the input schema for the tracks_find tool.
type FindInput struct {
	Query string `json:"query"           jsonschema:"free text or a bleve query string"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of hits (default 20)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// runner loads the catalog into a fresh query runner.
func (s *Server) runner(ctx context.Context) (*query.Runner, error) {
	ds := query.Load(ctx, s.deps.Source, s.logger)
	if ds.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ds.Err)
	}

	opts := []query.Option{
		query.WithLogger(s.logger),
		query.WithPresortAlgorithm(s.deps.PresortAlgorithm),
	}

	if s.deps.Algorithms != nil {
		opts = append(opts, query.WithRecorder(s.deps.Algorithms))
	}

	return query.NewRunner(ds.Tracks, opts...), nil
}

func (s *Server) handleSort(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SortInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	algorithm, err := alg.Parse(input.Algorithm)
	if err != nil {
		return errorResult(err)
	}

	if !algorithm.IsSort() {
		return errorResult(fmt.Errorf("%w: got %s", ErrNotSortAlgorithm, algorithm))
	}

	field, err := track.ParseField(input.Field)
	if err != nil {
		return errorResult(err)
	}

	size := query.SizeAll

	if input.Size != "" {
		size, err = query.ParseSize(input.Size)
		if err != nil {
			return errorResult(err)
		}
	}

	r, err := s.runner(ctx)
	if err != nil {
		return errorResult(err)
	}

	run, err := r.Sort(ctx, algorithm, field)
	if err != nil {
		return errorResult(err)
	}

	run.ResultData = size.Apply(run.ResultData)

	return jsonResult(run)
}

func (s *Server) handleSearch(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SearchInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	r, err := s.runner(ctx)
	if err != nil {
		return errorResult(err)
	}

	run, err := r.Search(ctx, input.Term)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(run)
}

func (s *Server) handleFind(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input FindInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Index == nil {
		return errorResult(ErrNoIndex)
	}

	hits, err := s.deps.Index.Find(ctx, input.Query, input.Limit)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(hits)
}
