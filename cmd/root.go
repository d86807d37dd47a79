package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jonnyzzz.com/otaprobe/config"
	"jonnyzzz.com/otaprobe/logging"
	"jonnyzzz.com/otaprobe/updates"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the otaprobe command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "otaprobe",
		Short:         fmt.Sprintf("otaprobe v%s checks a published package for firmware updates", version),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to "+config.FileName+" (default: searched from the working directory upwards)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "diagnostics level: trace, debug, info, warn, error, disabled")
	flags.StringVar(&opts.logFormat, "log-format", "console", "diagnostics format: console or json")

	rootCmd.AddCommand(NewLatestCommand(opts))
	rootCmd.AddCommand(NewArtifactCommand(opts))
	rootCmd.AddCommand(NewCheckCommand(opts))
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewVersionCommand(version))

	return rootCmd
}

// Execute runs the command line and exits with status 1 on failure
func Execute(version string) {
	rootCmd := NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.Resolve(".")
}

func (o *rootOptions) logger(cmd *cobra.Command) *logging.Logger {
	return logging.New(logging.Options{
		Level:  o.logLevel,
		Format: o.logFormat,
		Writer: cmd.ErrOrStderr(),
	})
}

// newClient loads the configuration and builds an update client from it
func (o *rootOptions) newClient(cmd *cobra.Command) (*updates.Client, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	table, err := cfg.Certificates()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load authorities from %s: %w", cfg.Path(), err)
	}

	log := o.logger(cmd)
	configLog := logging.Named(log, "config")
	configLog.Debug().Str("config", cfg.String()).Msg("configuration loaded")
	for _, entry := range table.Entries() {
		configLog.Debug().Str("fragment", entry.Fragment).Msg("pinned authority")
	}

	client := updates.NewClient(cfg.Identity(),
		updates.WithCertificates(table),
		updates.WithLogger(logging.Named(log, "updates")),
	)
	return client, cfg, nil
}
