package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoLatestVersion = errors.New("latest version is not known, run with --log-level debug for details")

func NewLatestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the latest published version of the package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			latest := client.LatestVersion()
			if latest == "" {
				return errNoLatestVersion
			}
			fmt.Fprintln(cmd.OutOrStdout(), latest)
			return nil
		},
	}
}
