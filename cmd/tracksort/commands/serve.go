package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/api"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
)

type serveFlags struct {
	host string
	port int
}

func newServeCommand(g *globals) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP catalog and visualizer server",
		Long: `Serve the track catalog over HTTP:

  GET /data        every track as JSON
  GET /health      status and connection pool
  GET /healthz     liveness probe
  GET /readyz      readiness probe (database ping)
  GET /sort        sort the catalog
  GET /search      binary search the catalog
  GET /find        fuzzy lookup
  GET /visualize   NDJSON stream of visualizer snapshots
  GET /metrics     Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, g, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "listen port (overrides server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, g *globals, flags *serveFlags) error {
	sess, err := g.open(observability.ModeServe)
	if err != nil {
		return err
	}
	defer sess.close()

	if flags.host != "" {
		sess.cfg.Server.Host = flags.host
	}

	if flags.port != 0 {
		sess.cfg.Server.Port = flags.port
	}

	presort, err := alg.Parse(sess.cfg.Query.Presort)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sess.openStore(ctx)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := store.Close()
		if closeErr != nil {
			sess.logger.Warn("close catalog failed", "error", closeErr)
		}
	}()

	index := buildIndex(ctx, sess, store)

	defer func() {
		closeErr := index.Close()
		if closeErr != nil {
			sess.logger.Warn("close lookup index failed", "error", closeErr)
		}
	}()

	handler := api.NewHandler(api.Options{
		Store:            store,
		Index:            index,
		Tracer:           sess.providers.Tracer,
		RED:              sess.providers.RED,
		Algorithms:       sess.providers.Algorithms,
		MetricsHandler:   sess.providers.MetricsHandler,
		Logger:           sess.logger,
		AllowOrigin:      sess.cfg.Server.AllowOrigin,
		Delays:           sess.cfg.Visualize.Delays(),
		PresortAlgorithm: presort,
		ArraySize:        sess.cfg.Visualize.ArraySize,
		MaxArraySize:     sess.cfg.Visualize.MaxArraySize,
	})

	srv, err := api.Listen(ctx, sess.cfg.Server.Addr(), handler, api.ServerOptions{
		ReadTimeout:     sess.cfg.Server.ReadTimeout,
		IdleTimeout:     sess.cfg.Server.IdleTimeout,
		ShutdownTimeout: sess.cfg.Server.ShutdownTimeout,
		Logger:          sess.logger,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

// buildIndex indexes the catalog for /find. Failures leave the endpoint
// disabled rather than stopping the server.
func buildIndex(ctx context.Context, sess *session, store catalog.Store) *catalog.Index {
	tracks, err := store.All(ctx)
	if err != nil {
		sess.logger.WarnContext(ctx, "lookup index disabled", "error", err)

		return nil
	}

	index, err := catalog.NewIndex(tracks)
	if err != nil {
		sess.logger.WarnContext(ctx, "lookup index disabled", "error", err)

		return nil
	}

	sess.logger.InfoContext(ctx, "lookup index built", "tracks", index.Len(), "database", sess.cfg.Database.Path)

	return index
}
