package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tracksort/pkg/observability"
	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

// defaultReplayDelay is the pause between replayed frames.
const defaultReplayDelay = 100 * time.Millisecond

type replayFlags struct {
	visualizeFlags

	delay time.Duration
}

func newReplayCommand(g *globals) *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay <recording>",
		Short: "Play back a recorded visualization",
		Long: `Play back a snapshot stream written by "tracksort visualize --record".
Snapshots must appear in increasing step order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, g, flags, args[0])
		},
	}

	cmd.Flags().DurationVar(&flags.delay, "delay", defaultReplayDelay, "pause between frames")
	cmd.Flags().IntVar(&flags.width, "width", 0, "bar width")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print only the summary")

	return cmd
}

func runReplay(cmd *cobra.Command, g *globals, flags *replayFlags, path string) error {
	sess, err := g.open(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	render := framePublisher(out, &flags.visualizeFlags)

	var (
		frames int
		last   visualize.Snapshot
	)

	err = visualize.Replay(ctx, f, func(s visualize.Snapshot) error {
		render(s)

		frames++
		last = s

		return sleep(ctx, flags.delay)
	})
	if err != nil {
		return err
	}

	sess.logger.DebugContext(ctx, "replay finished", "path", path, "snapshots", frames)

	fmt.Fprintf(out, "replayed %d snapshots of %s, final step %d\n", frames, last.Algorithm, last.Step)

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
