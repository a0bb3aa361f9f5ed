package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/report"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

type searchFlags struct {
	remote bool
	json   bool
}

func newSearchCommand(g *globals) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Binary search the catalog by id or name",
		Long: `Binary search the track catalog. An integer term looks up an id,
anything else a name, ignoring case. The catalog is sorted by the search
field first; that cost is reported separately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, flags, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&flags.remote, "remote", false, "read the catalog from the configured server")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the run as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, g *globals, flags *searchFlags, term string) error {
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

	runner, err := sess.runner(tracks)
	if err != nil {
		return err
	}

	run, err := runner.Search(ctx, term)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if flags.json {
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
		Term:    run.SearchTerm,
		Status:  string(run.Status),
		Presort: run.Presort,
	}))

	var match []track.Track
	if run.ResultData != nil {
		match = append(match, *run.ResultData)
	}

	fmt.Fprint(out, report.Tracks(match))

	return nil
}
