package commands

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/report"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

var (
	errArraySize = errors.New("array size out of range")
	errSpeed     = errors.New("speed must be positive")
)

type visualizeFlags struct {
	algorithm string
	size      int
	target    string
	seed      uint64
	speed     float64
	noPresort bool
	record    string
	width     int
	quiet     bool
}

func newVisualizeCommand(g *globals) *cobra.Command {
	flags := &visualizeFlags{}

	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Animate an algorithm over random integers",
		Long: `Run quicksort, merge sort or binary search step by step over a shuffled
integer array and draw every step as bars. Ctrl-C stops the run and keeps
the partially sorted array.

Use --record to save the snapshots as an LZ4 compressed NDJSON stream that
"tracksort replay" plays back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVisualize(cmd, g, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", string(alg.QuickSort), "quickSort, mergeSort or binarySearch")
	cmd.Flags().IntVarP(&flags.size, "size", "n", 0, "array size (default visualize.array_size)")
	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "value to find with binarySearch")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "shuffle seed (0 picks one at random)")
	cmd.Flags().Float64Var(&flags.speed, "speed", 1, "playback speed multiplier")
	cmd.Flags().BoolVar(&flags.noPresort, "no-presort", false, "reject unsorted data for binarySearch")
	cmd.Flags().StringVar(&flags.record, "record", "", "write snapshots to this file")
	cmd.Flags().IntVar(&flags.width, "width", report.DefaultBarWidth, "bar width")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print only the outcome")

	return cmd
}

func runVisualize(cmd *cobra.Command, g *globals, flags *visualizeFlags) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	req, data, err := visualizeRequest(sess, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	publish := framePublisher(out, flags)

	var rec *visualize.Recorder

	if flags.record != "" {
		f, createErr := os.Create(flags.record)
		if createErr != nil {
			return fmt.Errorf("create recording: %w", createErr)
		}
		defer f.Close()

		rec = visualize.NewRecorder(f)
		render := publish
		publish = func(s visualize.Snapshot) {
			rec.Publish(s)
			render(s)
		}
	}

	v := visualize.New(data,
		visualize.WithDelays(sess.cfg.Visualize.Delays().Scale(1/flags.speed)),
		visualize.WithLogger(sess.logger),
	)

	outcome, err := v.Run(ctx, req, publish)
	if err != nil {
		return err
	}

	sess.providers.Algorithms.RecordVisualization(ctx, outcome.Algorithm, string(outcome.Status), outcome.Steps)

	if rec != nil {
		err = rec.Close()
		if err != nil {
			return err
		}

		sess.logger.InfoContext(ctx, "recording saved", "path", flags.record, "snapshots", rec.Count())
	}

	printOutcome(out, outcome, len(data))

	return nil
}

func visualizeRequest(sess *session, flags *visualizeFlags) (visualize.Request, []int, error) {
	algorithm, err := alg.Parse(flags.algorithm)
	if err != nil {
		return visualize.Request{}, nil, err
	}

	n := flags.size
	if n == 0 {
		n = sess.cfg.Visualize.ArraySize
	}

	if n < 1 || n > sess.cfg.Visualize.MaxArraySize {
		return visualize.Request{}, nil, fmt.Errorf("%w: %d not in 1..%d", errArraySize, n, sess.cfg.Visualize.MaxArraySize)
	}

	if flags.speed <= 0 {
		return visualize.Request{}, nil, fmt.Errorf("%w: %v", errSpeed, flags.speed)
	}

	req := visualize.Request{Algorithm: algorithm, Presort: !flags.noPresort}

	if flags.target != "" {
		target, parseErr := query.ParseIntTarget(flags.target)
		if parseErr != nil {
			return visualize.Request{}, nil, parseErr
		}

		req.Target = &target
	}

	var rng *rand.Rand
	if flags.seed != 0 {
		rng = rand.New(rand.NewPCG(flags.seed, flags.seed))
	}

	return req, query.RandomIntegers(n, rng), nil
}

// framePublisher draws each snapshot. On a terminal every frame replaces
// the previous one; otherwise frames are appended.
func framePublisher(w io.Writer, flags *visualizeFlags) visualize.Publisher {
	if flags.quiet {
		return func(visualize.Snapshot) {}
	}

	redraw := false
	if f, ok := w.(*os.File); ok {
		redraw = isatty.IsTerminal(f.Fd())
	}

	return func(s visualize.Snapshot) {
		if redraw {
			fmt.Fprint(w, clearScreen)
		}

		fmt.Fprintln(w, report.Frame(s, flags.width))
	}
}

func printOutcome(w io.Writer, out visualize.Outcome, records int) {
	fmt.Fprint(w, report.MetricCard(report.Card{
		Result:  out.Result,
		Records: records,
		Status:  string(out.Status),
		Presort: out.Presort,
	}))

	if out.Algorithm == alg.BinarySearch && out.Status == visualize.StatusCompleted {
		if out.Found {
			fmt.Fprintf(w, "found at index %d\n", out.Index)
		} else {
			fmt.Fprintln(w, "not found")
		}
	}

	fmt.Fprintf(w, "%v\n", out.Array)
}
