package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/mcp"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/version"
)

type mcpFlags struct {
	remote bool
}

func newMCPCommand(g *globals) *cobra.Command {
	flags := &mcpFlags{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the catalog as tools that AI agents can discover and invoke:
  - tracks_sort: sort the catalog by a field
  - tracks_search: binary search by id or name
  - tracks_find: fuzzy lookup by name, artist or album

Logs are written to stderr as JSON.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, g, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.remote, "remote", false, "read the catalog from the configured server")

	return cmd
}

func runMCP(cmd *cobra.Command, g *globals, flags *mcpFlags) error {
	sess, err := g.open(observability.ModeMCP)
	if err != nil {
		return err
	}
	defer sess.close()

	presort, err := alg.Parse(sess.cfg.Query.Presort)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	src, release, err := sess.source(ctx, flags.remote)
	if err != nil {
		return err
	}
	defer release()

	deps := mcp.ServerDeps{
		Source:           src,
		Logger:           sess.logger,
		Metrics:          sess.providers.RED,
		Algorithms:       sess.providers.Algorithms,
		Tracer:           sess.providers.Tracer,
		PresortAlgorithm: presort,
		Version:          version.Get().Version,
	}

	tracks, err := src.All(ctx)
	if err != nil {
		sess.logger.WarnContext(ctx, "tracks_find disabled", "error", err)
	} else {
		deps.Index, err = catalog.NewIndex(tracks)
		if err != nil {
			sess.logger.WarnContext(ctx, "tracks_find disabled", "error", err)
		}
	}

	defer deps.Index.Close()

	return mcp.NewServer(deps).Run(ctx)
}
