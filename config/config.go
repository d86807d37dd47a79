package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"jonnyzzz.com/otaprobe/certs"
	"jonnyzzz.com/otaprobe/updates"
)

// EnvPrefix prefixes the environment variables that override file values,
// e.g. OTAPROBE_PACKAGE_ACCOUNT or OTAPROBE_CURRENT_VERSION
const EnvPrefix = "OTAPROBE"

// Config is the content of .otaprobe.yaml
type Config struct {
	Package        PackageSection   `yaml:"package"`
	Hosts          HostsSection     `yaml:"hosts,omitempty"`
	CurrentVersion string           `yaml:"current_version,omitempty"`
	Authorities    []AuthorityEntry `yaml:"authorities,omitempty"`

	path string
}

// PackageSection identifies the package to check
type PackageSection struct {
	Account    string `yaml:"account"`
	Repository string `yaml:"repository"`
	Name       string `yaml:"name"`
}

// HostsSection overrides the service hosts; empty values keep the defaults
type HostsSection struct {
	Metadata string `yaml:"metadata,omitempty"`
	Storage  string `yaml:"storage,omitempty"`
}

// AuthorityEntry pins a PEM file to a URL fragment. Entries are matched in order.
type AuthorityEntry struct {
	Fragment string `yaml:"fragment"`
	PEMFile  string `yaml:"pem_file"`
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

func (c *Config) String() string {
	return fmt.Sprintf("ConfigPath: %s, Package: %s/%s/%s", c.path, c.Package.Account, c.Package.Repository, c.Package.Name)
}

// Identity converts the configuration into an update client identity
func (c *Config) Identity() updates.Identity {
	return updates.Identity{
		Account:      c.Package.Account,
		Repository:   c.Package.Repository,
		Package:      c.Package.Name,
		MetadataHost: c.Hosts.Metadata,
		StorageHost:  c.Hosts.Storage,
	}
}

// Certificates loads the configured authorities. It returns nil when none are
// configured, which keeps the compiled-in table.
// Relative PEM paths are resolved against the configuration file directory.
func (c *Config) Certificates() (*certs.Table, error) {
	if len(c.Authorities) == 0 {
		return nil, nil
	}

	entries := make([]certs.Entry, 0, len(c.Authorities))
	for _, a := range c.Authorities {
		pemPath := a.PEMFile
		if !filepath.IsAbs(pemPath) && c.path != "" {
			pemPath = filepath.Join(filepath.Dir(c.path), pemPath)
		}

		authority, err := certs.LoadAuthority(a.Fragment, pemPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, certs.Entry{Fragment: a.Fragment, Authority: authority})
	}

	return certs.NewTable(entries...)
}

// Resolve finds .otaprobe.yaml from cwd upwards and loads it
func Resolve(cwd string) (*Config, error) {
	configPath, err := FindConfigFile(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config: %w", err)
	}
	return Load(configPath)
}

// Load reads the configuration file, applies environment overrides and validates the result
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read configuration file %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", configPath, err)
	}
	cfg.path = configPath

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", configPath, err)
	}

	return &cfg, nil
}

// Validate checks the required fields
func (c *Config) Validate() error {
	if c.Package.Account == "" {
		return fmt.Errorf("package account is required")
	}
	if c.Package.Repository == "" {
		return fmt.Errorf("package repository is required")
	}
	if c.Package.Name == "" {
		return fmt.Errorf("package name is required")
	}

	for i, a := range c.Authorities {
		if a.Fragment == "" {
			return fmt.Errorf("missing fragment for authority %d", i)
		}
		if a.PEMFile == "" {
			return fmt.Errorf("missing pem_file for authority %d (%s)", i, a.Fragment)
		}
	}

	return nil
}

// applyEnv overrides file values with OTAPROBE_* environment variables
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	targets := map[string]*string{
		"package.account":    &cfg.Package.Account,
		"package.repository": &cfg.Package.Repository,
		"package.name":       &cfg.Package.Name,
		"hosts.metadata":     &cfg.Hosts.Metadata,
		"hosts.storage":      &cfg.Hosts.Storage,
		"current_version":    &cfg.CurrentVersion,
	}
	for key, target := range targets {
		_ = v.BindEnv(key)
		if value := v.GetString(key); value != "" {
			*target = value
		}
	}
}
