package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kinetic",
	Short: "Kinetic plays declarative animation scenes",
	Long: `Kinetic coordinates declarative animations: every element of a scene replays the
animation matching its router's trigger, and parents and children order their entry
and exit through a binding protocol.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: 'text' or 'grouped'")
	rootCmd.PersistentFlags().String("stage-id", "", "Stage id used for traces and locks (random by default)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for trace storage and stage locking (e.g. localhost:6379)")
	rootCmd.PersistentFlags().String("trace-dir", "", "Directory for file-based trace storage")
}
