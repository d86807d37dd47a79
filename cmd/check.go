package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jonnyzzz.com/otaprobe/updates"
)

type checkCommandConfig struct {
	root       *rootOptions
	current    string
	jsonOutput bool
}

func NewCheckCommand(opts *rootOptions) *cobra.Command {
	config := &checkCommandConfig{root: opts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether the published version differs from the current one",
		Args:  cobra.NoArgs,
		RunE:  config.doTheCommand,
	}
	cmd.Flags().StringVar(&config.current, "current", "", "current version (default: current_version from the configuration)")
	cmd.Flags().BoolVar(&config.jsonOutput, "json", false, "print the result as JSON")

	return cmd
}

func (c *checkCommandConfig) doTheCommand(cmd *cobra.Command, args []string) error {
	client, cfg, err := c.root.newClient(cmd)
	if err != nil {
		return err
	}

	current := c.current
	if current == "" {
		current = cfg.CurrentVersion
	}
	if current == "" {
		return fmt.Errorf("current version is not known, pass --current or set current_version in %s", cfg.Path())
	}

	check := updates.NewUpdateService(client, current).Check()
	out := cmd.OutOrStdout()

	if c.jsonOutput {
		data, err := json.MarshalIndent(check, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	switch {
	case check.Latest == "":
		fmt.Fprintf(out, "Current version %s, latest version is not known\n", check.Current)
	case !check.Available:
		fmt.Fprintf(out, "Version %s is up to date\n", check.Current)
	default:
		fmt.Fprintf(out, "Update available: %s -> %s\n", check.Current, check.Latest)
		if check.DownloadURL != "" {
			fmt.Fprintln(out, "URL:", check.DownloadURL)
		}
	}
	return nil
}
