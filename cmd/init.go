package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jonnyzzz.com/otaprobe/config"
	"jonnyzzz.com/otaprobe/updates"
)

type initCommandConfig struct {
	account      string
	repository   string
	packageName  string
	metadataHost string
	storageHost  string
}

func NewInitCommand() *cobra.Command {
	opts := &initCommandConfig{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write the package coordinates to " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE:  opts.doTheCommand,
	}
	cmd.Flags().StringVar(&opts.account, "account", "", "account owning the repository")
	cmd.Flags().StringVar(&opts.repository, "repository", "", "repository holding the package")
	cmd.Flags().StringVar(&opts.packageName, "package", "", "package name")
	cmd.Flags().StringVar(&opts.metadataHost, "metadata-host", "", "metadata API host (default "+updates.DefaultMetadataHost+")")
	cmd.Flags().StringVar(&opts.storageHost, "storage-host", "", "download host (default "+updates.DefaultStorageHost+")")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("repository")
	_ = cmd.MarkFlagRequired("package")

	return cmd
}

func (c *initCommandConfig) doTheCommand(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	cfg := &config.Config{
		Package: config.PackageSection{
			Account:    c.account,
			Repository: c.repository,
			Name:       c.packageName,
		},
		Hosts: config.HostsSection{
			Metadata: c.metadataHost,
			Storage:  c.storageHost,
		},
	}

	configPath := filepath.Join(absPath, config.FileName)
	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for %s/%s/%s\n", configPath, c.account, c.repository, c.packageName)
	return nil
}
