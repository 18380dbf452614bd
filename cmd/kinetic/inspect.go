package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/kinetic/internal/presentation/graph"
	"github.com/aretw0/kinetic/internal/presentation/tui"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <scene>",
	Short: "Show the scene tree and its lifecycle states",
	Long: `Builds the scene with instant animations, optionally replays its script step by step, and prints
either a Mermaid diagram (graph TD) of the tree colored by lifecycle state or a
markdown report of every coordinator.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		format, _ := cmd.Flags().GetString("format")
		play, _ := cmd.Flags().GetBool("play")

		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		stage, built, err := buildScene(sc, motion.Instantly{}, nil, nil)
		if err != nil {
			return err
		}
		logger.Debug("inspecting", "scene", sc.Name, "stage", stage.ID())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := built.Settle(ctx, time.Millisecond); err != nil {
			return err
		}
		if play {
			for i, step := range sc.Script {
				if _, err := scene.Apply(stage.Routers(), step); err != nil {
					return fmt.Errorf("script[%d]: %w", i, err)
				}
				if err := built.Settle(ctx, time.Millisecond); err != nil {
					return err
				}
			}
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(sc.Nodes, &graph.GraphOverlay{States: built.States()}))
		case "markdown":
			out, err := tui.NewRenderer()(tui.SnapshotsMarkdown(sc.Name, stage.Snapshots()))
			if err != nil {
				return err
			}
			fmt.Print(out)
		default:
			return fmt.Errorf("unknown format: %s. Supported: mermaid, markdown", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("format", "f", "mermaid", "Output format: 'mermaid' or 'markdown'")
	inspectCmd.Flags().Bool("play", false, "Replay the scene script before printing")
}
