package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaguesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "List the leagues present in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := root.service(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range svc.Leagues(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}
