package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/chaincounter/version"
)

func versionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only version and commit")
	return cmd
}
