package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
)

type seedFlags struct {
	insert bool
	output string
}

func newSeedCommand(g *globals) *cobra.Command {
	flags := &seedFlags{}

	cmd := &cobra.Command{
		Use:   "seed <dataset.json>",
		Short: "Convert or load a track dataset",
		Long: `Read a dataset of tracks (a JSON array of objects with name, artists,
album, popularity, duration_ms and preview_url), validate it and either print
INSERT statements for the collections table or insert the rows into the
configured database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, g, flags, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.insert, "insert", false, "insert into the configured database instead of printing SQL")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write SQL to this file instead of stdout")

	return cmd
}

func runSeed(cmd *cobra.Command, g *globals, flags *seedFlags, path string) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	tracks, err := catalog.ParseDataset(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if flags.insert {
		store, openErr := sess.openStore(ctx)
		if openErr != nil {
			return openErr
		}
		defer store.Close()

		n, insertErr := store.InsertBatch(ctx, tracks)
		if insertErr != nil {
			return insertErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d tracks into %s\n", n, sess.cfg.Database.Path)

		return nil
	}

	if flags.output == "" {
		return catalog.WriteSQL(cmd.OutOrStdout(), tracks)
	}

	out, err := os.Create(flags.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", flags.output, err)
	}
	defer out.Close()

	err = catalog.WriteSQL(out, tracks)
	if err != nil {
		return err
	}

	sess.logger.InfoContext(ctx, "seed written", "path", flags.output, "tracks", len(tracks))

	return nil
}
