package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewArtifactCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "artifact [version]",
		Short: "Print the artifact path and download URL of a version (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			version := ""
			if len(args) > 0 {
				version = args[0]
			} else if version = client.LatestVersion(); version == "" {
				return errNoLatestVersion
			}

			artifactPath := client.ArtifactPath(version)
			if artifactPath == "" {
				return fmt.Errorf("no artifact found for version %s", version)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Version:", version)
			fmt.Fprintln(out, "Path:", artifactPath)
			fmt.Fprintln(out, "URL:", client.DownloadURL(artifactPath))
			return nil
		},
	}
}
