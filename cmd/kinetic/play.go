package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/kinetic/internal/presentation/tui"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <scene>",
	Short: "Play a scene script and print the lifecycle trace",
	Long: `Builds the scene, runs its script in real time and waits for every coordinator to
settle. The recorded transitions are printed, followed by a report of the final states.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		instant, _ := cmd.Flags().GetBool("instant")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		quiet, _ := cmd.Flags().GetBool("quiet")

		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}

		opts, cleanup, err := stageOptions(cmd, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		var ticker motion.Ticker = motion.RealTime{}
		if instant {
			ticker = motion.Instantly{}
		}
		stage, built, err := buildScene(sc, ticker, nil, opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if !quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		done := make(chan error, 1)
		go func() { done <- stage.Run(ctx) }()

		playErr := built.Play(ctx)
		if playErr == nil {
			playErr = built.WaitSettled(ctx, 10*time.Millisecond)
		}
		stage.Stop()
		if err := <-done; err != nil && ctx.Err() == nil {
			return fmt.Errorf("stage failed: %w", err)
		}
		switch {
		case errors.Is(playErr, context.DeadlineExceeded):
			return fmt.Errorf("scene %s did not settle within %s", sc.Name, timeout)
		case errors.Is(playErr, context.Canceled):
			logger.Warn("interrupted, printing partial trace")
		case playErr != nil:
			return playErr
		}

		trace, err := stage.Trace(context.Background())
		if err != nil && !errors.Is(err, domain.ErrTraceNotFound) {
			return err
		}
		for _, e := range trace {
			fmt.Printf("%s  %-16s %s -> %s\n",
				e.Timestamp.Format("15:04:05.000"), e.Coordinator, tui.StateLabel(e.From), tui.StateLabel(e.To))
		}

		if quiet {
			return nil
		}
		render := tui.NewRenderer()
		out, err := render(tui.SnapshotsMarkdown(sc.Name, stage.Snapshots()))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("instant", false, "Complete tweens immediately instead of in real time")
	playCmd.Flags().Duration("timeout", time.Minute, "Give up if the scene has not settled by then")
	playCmd.Flags().BoolP("quiet", "q", false, "Only print the trace")
}
