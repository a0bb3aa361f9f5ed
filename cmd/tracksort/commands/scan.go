package commands

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
)

type scanFlags struct {
	workers int
	batch   int
}

func newScanCommand(g *globals) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <music-dir>",
		Short: "Index a music directory",
		Long: `Walk a directory, read the tags of every MP3, M4A, OGG and FLAC file in
parallel and insert the tracks into the configured database. Files without
readable tags are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, flags, args[0])
		},
	}

	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "tag readers (default one per CPU)")
	cmd.Flags().IntVar(&flags.batch, "batch", catalog.DefaultScanBatch, "tracks per insert")

	return cmd
}

func runScan(cmd *cobra.Command, g *globals, flags *scanFlags, root string) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := cmd.Context()

	store, err := sess.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	scanner := catalog.Scanner{Workers: flags.workers, BatchSize: flags.batch, Logger: sess.logger}

	res, err := scanner.Scan(ctx, root, store)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %s of %s files (%s skipped) in %s\n",
		humanize.Comma(res.Indexed), humanize.Comma(res.Files), humanize.Comma(res.Skipped), res.Duration.Round(time.Millisecond))

	return nil
}
