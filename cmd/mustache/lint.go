package main

import (
	"fmt"
	"os"

	"github.com/kelta-io/mustache"
	"github.com/spf13/cobra"
)

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <template>",
		Short: "Parse a mustache template and report any parse error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}

			_, err = mustache.ParseString(string(src))
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}

			if perr, ok := err.(*mustache.ParseError); ok {
				return fmt.Errorf("%s:%d: %s: %s", args[0], perr.Line, perr.Kind, perr.Message)
			}
			return err
		},
	}
	return cmd
}
