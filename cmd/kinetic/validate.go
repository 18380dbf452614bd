package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scene>...",
	Short: "Check scenes for consistency",
	Long:  `Parses every scene and reports unknown routers, duplicate ids, invalid predicates and animations.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if _, err := scene.Load(path); err != nil {
				failed++
				fmt.Printf("%s: invalid\n", path)
				for _, e := range flatten(err) {
					fmt.Printf("  - %v\n", e)
				}
				continue
			}
			fmt.Printf("%s: ok\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenes are invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// flatten lists the individual errors of a joined validation error.
func flatten(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			return joined.Unwrap()
		}
	}
	return []error{err}
}
