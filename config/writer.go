package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

const fileHeader = "# .otaprobe.yaml - package coordinates for over-the-air update checks\n" +
	"# Environment variables OTAPROBE_PACKAGE_ACCOUNT, OTAPROBE_PACKAGE_REPOSITORY, ... override these values\n\n"

// Write stores cfg at configPath. A new file gets a header; in an existing
// file only the package and hosts sections are replaced and comments are kept.
func Write(configPath string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		return createNewConfig(configPath, cfg)
	}

	return updateExistingConfig(configPath, cfg)
}

func createNewConfig(configPath string, cfg *Config) error {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(fileHeader+string(yamlBytes)), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// updateExistingConfig updates an existing file while preserving formatting
func updateExistingConfig(configPath string, cfg *Config) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read existing configuration: %w", err)
	}

	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse existing configuration: %w", err)
	}

	sections := []struct {
		path  string
		value any
	}{
		{"$.package", cfg.Package},
		{"$.hosts", cfg.Hosts},
	}

	for _, section := range sections {
		path, err := yaml.PathString(section.path)
		if err != nil {
			return fmt.Errorf("failed to create path: %w", err)
		}

		if existing, err := path.FilterFile(file); err != nil || existing == nil {
			// the section is missing, so the file is rewritten as a whole
			return rewriteConfig(configPath, data, cfg)
		}

		newNode, err := sectionNode(section.value)
		if err != nil {
			return err
		}

		if err := path.ReplaceWithNode(file, newNode); err != nil {
			return fmt.Errorf("failed to replace %s: %w", section.path, err)
		}
	}

	if err := os.WriteFile(configPath, []byte(file.String()), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

func sectionNode(value any) (ast.Node, error) {
	newYaml, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal new section: %w", err)
	}

	newFile, err := parser.ParseBytes(newYaml, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse new section: %w", err)
	}

	if len(newFile.Docs) == 0 || newFile.Docs[0].Body == nil {
		return nil, fmt.Errorf("new section has no body")
	}

	return newFile.Docs[0].Body, nil
}

// rewriteConfig keeps the values of the existing file that cfg does not own
func rewriteConfig(configPath string, data []byte, cfg *Config) error {
	var existing Config
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return fmt.Errorf("failed to parse existing configuration: %w", err)
	}

	existing.Package = cfg.Package
	existing.Hosts = cfg.Hosts
	if cfg.CurrentVersion != "" {
		existing.CurrentVersion = cfg.CurrentVersion
	}
	if len(cfg.Authorities) > 0 {
		existing.Authorities = cfg.Authorities
	}

	return createNewConfig(configPath, &existing)
}
