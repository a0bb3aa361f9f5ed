package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/report"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

type sortFlags struct {
	algorithm string
	field     string
	size      string
	remote    bool
	diff      bool
	json      bool
}

func newSortCommand(g *globals) *cobra.Command {
	flags := &sortFlags{}

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the catalog by a field",
		Long: `Sort the track catalog with quicksort or merge sort and report the
comparisons, swaps and elapsed time of the run.

Defaults come from the query section of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSort(cmd, g, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", "", "quickSort or mergeSort")
	cmd.Flags().StringVarP(&flags.field, "field", "f", "", "field to sort by")
	cmd.Flags().StringVarP(&flags.size, "size", "n", "", "tracks to show: 10, 20, 30, 50 or all")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "read the catalog from the configured server")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show how the order changed")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the run as JSON")

	return cmd
}

func runSort(cmd *cobra.Command, g *globals, flags *sortFlags) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	algorithm, err := alg.Parse(withDefault(flags.algorithm, sess.cfg.Query.Algorithm))
	if err != nil {
		return err
	}

	field, err := track.ParseField(withDefault(flags.field, sess.cfg.Query.Field))
	if err != nil {
		return err
	}

	size, err := query.ParseSize(withDefault(flags.size, sess.cfg.Query.Size))
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	tracks, err := sess.load(ctx, flags.remote)
	if err != nil {
		return err
	}

	runner, err := sess.runner(tracks)
	if err != nil {
		return err
	}

	run, err := runner.Sort(ctx, algorithm, field)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if flags.json {
		run.ResultData = size.Apply(run.ResultData)

		return writeJSON(out, run)
	}

	fmt.Fprint(out, report.MetricCard(report.Card{
		Result: metrics.Result{
			Algorithm:   run.Algorithm,
			Comparisons: run.Comparisons,
			Swaps:       run.Swaps,
			ElapsedMs:   run.ElapsedMs,
		},
		Records: len(tracks),
		Field:   run.Field,
	}))
	fmt.Fprint(out, report.Tracks(size.Apply(run.ResultData)))

	if flags.diff {
		changes := report.OrderDiff(report.TrackLabels(size.Apply(tracks)), report.TrackLabels(size.Apply(run.ResultData)))
		fmt.Fprintf(out, "\n%d of %d positions changed\n", report.Moved(changes), len(size.Apply(tracks)))
		fmt.Fprint(out, report.RenderDiff(changes))
	}

	return nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
