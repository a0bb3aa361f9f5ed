// Package commands implements the tracksort cobra commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/config"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
	"github.com/Sumatoshi-tech/tracksort/pkg/version"
)

var errNoData = errors.New("no data")

// globals are the persistent root flags shared by every command.
type globals struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the tracksort command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "tracksort",
		Short: "Sort, search and visualize a music track catalog",
		Long: `tracksort runs quicksort, merge sort and binary search over a music
track catalog and reports comparisons, swaps and elapsed time.

Commands:
  serve      HTTP catalog and visualizer server
  sort       Sort the catalog by a field
  search     Binary search the catalog by id or name
  visualize  Animate an algorithm over random integers
  replay     Play back a recorded visualization
  bench      Measure every algorithm across dataset sizes
  seed       Convert or load a track dataset
  scan       Index a music directory
  find       Fuzzy lookup by name, artist or album
  mcp        MCP server for AI agents
  config     Print the effective configuration
  version    Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default ./tracksort.yaml)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCommand(g),
		newSortCommand(g),
		newSearchCommand(g),
		newVisualizeCommand(g),
		newReplayCommand(g),
		newBenchCommand(g),
		newSeedCommand(g),
		newScanCommand(g),
		newFindCommand(g),
		newMCPCommand(g),
		newConfigCommand(g),
		newVersionCommand(),
	)

	return root
}

// session is the configuration and telemetry of one command invocation.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
}

func (g *globals) open(mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.Observability(mode, version.Get().Version)
	if g.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	if mode == observability.ModeMCP {
		obsCfg.LogJSON = true
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers, logger: providers.Logger}, nil
}

func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.logger.Warn("observability shutdown failed", "error", err)
	}
}

// openStore opens the configured SQLite catalog.
func (s *session) openStore(ctx context.Context) (*catalog.SQLiteStore, error) {
	return catalog.Open(ctx, catalog.Options{
		Path:            s.cfg.Database.Path,
		ConnectionLimit: s.cfg.Database.ConnectionLimit,
		BusyTimeout:     s.cfg.Database.BusyTimeout,
		Logger:          s.logger,
	})
}

// source returns the catalog source: a running server when remote is set,
// the local database otherwise. The returned func releases it.
func (s *session) source(ctx context.Context, remote bool) (query.Source, func(), error) {
	if remote {
		client := catalog.NewClient(s.cfg.Client.BaseURL, &http.Client{Timeout: s.cfg.Client.Timeout})

		return client, func() {}, nil
	}

	store, err := s.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	return store, func() {
		closeErr := store.Close()
		if closeErr != nil {
			s.logger.Warn("close catalog failed", "error", closeErr)
		}
	}, nil
}

// load reads the catalog, failing when the source yields no data.
func (s *session) load(ctx context.Context, remote bool) ([]track.Track, error) {
	src, release, err := s.source(ctx, remote)
	if err != nil {
		return nil, err
	}
	defer release()

	ds := query.Load(ctx, src, s.logger)
	if ds.NoData {
		return nil, fmt.Errorf("%w: %w", errNoData, ds.Err)
	}

	return ds.Tracks, nil
}

// runner builds a query runner over tracks with the configured presort.
func (s *session) runner(tracks []track.Track) (*query.Runner, error) {
	presort, err := alg.Parse(s.cfg.Query.Presort)
	if err != nil {
		return nil, err
	}

	return query.NewRunner(tracks,
		query.WithLogger(s.logger),
		query.WithPresortAlgorithm(presort),
		query.WithRecorder(s.providers.Algorithms),
	), nil
}
