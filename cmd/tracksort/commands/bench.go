package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/bench"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/report"
	"github.com/Sumatoshi-tech/tracksort/pkg/version"
)

type benchFlags struct {
	sizes      []int
	algorithms []string
	repeat     int
	seed       uint64
	html       string
	save       string
	load       string
	json       bool
}

func newBenchCommand(g *globals) *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure every algorithm across dataset sizes",
		Long: `Run each algorithm several times over shuffled integer arrays of every
size and report mean comparisons and swaps plus median elapsed time.
Binary search looks up a random member of a presorted array.

Use --html to write an interactive chart, --save to keep the results as
.json or .gob and --load to render saved results without measuring again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, g, flags)
		},
	}

	cmd.Flags().IntSliceVar(&flags.sizes, "sizes", bench.DefaultSizes, "dataset sizes")
	cmd.Flags().StringSliceVar(&flags.algorithms, "algorithms", nil, "algorithms to measure (default all)")
	cmd.Flags().IntVar(&flags.repeat, "repeat", bench.DefaultRepeat, "runs per algorithm and size")
	cmd.Flags().Uint64Var(&flags.seed, "seed", bench.DefaultSeed, "shuffle seed")
	cmd.Flags().StringVar(&flags.html, "html", "", "write an HTML chart to this file")
	cmd.Flags().StringVar(&flags.save, "save", "", "save results to this .json or .gob file")
	cmd.Flags().StringVar(&flags.load, "load", "", "render results saved with --save instead of measuring")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the points as JSON")

	return cmd
}

func runBench(cmd *cobra.Command, g *globals, flags *benchFlags) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	results, err := benchResults(cmd, sess, flags)
	if err != nil {
		return err
	}

	if flags.save != "" {
		err = bench.Save(flags.save, results)
		if err != nil {
			return err
		}

		sess.logger.InfoContext(cmd.Context(), "results saved", "path", flags.save)
	}

	points := results.Points
	out := cmd.OutOrStdout()

	if flags.json {
		err = writeJSON(out, points)
	} else {
		_, err = fmt.Fprint(out, report.BenchTable(points))
	}

	if err != nil {
		return err
	}

	if flags.html == "" {
		return nil
	}

	f, err := os.Create(flags.html)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	err = report.BenchChart(points, f)
	if err != nil {
		return err
	}

	sess.logger.InfoContext(cmd.Context(), "chart written", "path", flags.html)

	return nil
}

func benchResults(cmd *cobra.Command, sess *session, flags *benchFlags) (bench.Results, error) {
	if flags.load != "" {
		return bench.Load(flags.load)
	}

	algorithms := make([]alg.Algorithm, 0, len(flags.algorithms))

	for _, name := range flags.algorithms {
		a, err := alg.Parse(name)
		if err != nil {
			return bench.Results{}, err
		}

		algorithms = append(algorithms, a)
	}

	points, err := bench.Run(cmd.Context(), bench.Options{
		Sizes:      flags.sizes,
		Algorithms: algorithms,
		Repeat:     flags.repeat,
		Seed:       flags.seed,
		Recorder:   sess.providers.Algorithms,
	})
	if err != nil {
		return bench.Results{}, err
	}

	return bench.Results{
		Version:   version.Get().Version,
		CreatedAt: time.Now().UTC(),
		Seed:      flags.seed,
		Repeat:    flags.repeat,
		Points:    points,
	}, nil
}
