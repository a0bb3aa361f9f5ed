package query

import (
	"context"
	"log/slog"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// Source supplies the catalog. catalog.Store and catalog.Client implement it.
type Source interface {
	All(ctx context.Context) ([]track.Track, error)
}

// Dataset is a loaded catalog.
type Dataset struct {
	Tracks []track.Track

	// NoData is set when the source failed. Tracks is then empty.
	NoData bool

	// Err is the source failure, kept for display.
	Err error
}

// Load reads the catalog from src. A failing or nil source yields an empty
// dataset with NoData set instead of an error.
func Load(ctx context.Context, src Source, logger *slog.Logger) Dataset {
	if logger == nil {
		logger = slog.Default()
	}

	if src == nil {
		return Dataset{Tracks: []track.Track{}, NoData: true, Err: ErrNoSource}
	}

	tracks, err := src.All(ctx)
	if err != nil {
		logger.WarnContext(ctx, "query: failed to load tracks", "error", err)

		return Dataset{Tracks: []track.Track{}, NoData: true, Err: err}
	}

	if tracks == nil {
		tracks = []track.Track{}
	}

	return Dataset{Tracks: tracks}
}
