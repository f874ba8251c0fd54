package main

import (
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/loxparse/pkg/repl"
)

func newReplCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newAnalyzer()
			if err != nil {
				return err
			}
			rl, err := repl.NewReadline()
			if err != nil {
				return err
			}
			defer rl.Close()
			return repl.NewSession(rl, cmd.OutOrStdout(), a, c.logger).Run(cmd.Context())
		},
	}
}
