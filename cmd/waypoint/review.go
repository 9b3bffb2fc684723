package main

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/waypoint/pkg/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Open the interactive review console for pending sessions",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	return tui.Run(rt.manager)
}
