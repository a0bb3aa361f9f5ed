package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/report"
)

type findFlags struct {
	limit  int
	remote bool
	json   bool
}

func newFindCommand(g *globals) *cobra.Command {
	flags := &findFlags{}

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy lookup by name, artist or album",
		Long: `Look tracks up by name, artist or album, tolerating one typo per word.
A query containing a colon is parsed as a field query, e.g. "artist:aespa"
or "year:>2021".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, g, flags, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", catalog.DefaultFindLimit, "maximum matches")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "read the catalog from the configured server")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the hits as JSON")

	return cmd
}

func runFind(cmd *cobra.Command, g *globals, flags *findFlags, q string) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := cmd.Context()

	tracks, err := sess.load(ctx, flags.remote)
	if err != nil {
		return err
	}

	index, err := catalog.NewIndex(tracks)
	if err != nil {
		return err
	}
	defer index.Close()

	hits, err := index.Find(ctx, q, flags.limit)
	if err != nil {
		return err
	}

	if flags.json {
		return writeJSON(cmd.OutOrStdout(), hits)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), report.Hits(hits))

	return err
}
