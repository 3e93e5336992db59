package main

import "github.com/spf13/cobra"

// newRootCmd builds the command tree, following cobra's own
// root+subcommand idiom.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mustache",
		Short:         "Render or lint mustache templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd())
	root.AddCommand(newLintCmd())
	return root
}
