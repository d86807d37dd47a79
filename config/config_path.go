package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file searched for by FindConfigFile
const FileName = ".otaprobe.yaml"

// FindConfigFile searches for .otaprobe.yaml starting from the given directory
// and moving up the directory tree until it finds the file or reaches the root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir

	visitedDirs := make(map[string]bool) // Track visited directories for symlink safety

	for {
		// Resolve the absolute path to prevent issues with symlinks and duplicates
		absDir, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve symlink in directory %s: %w", dir, err)
		}
		absDir, err = filepath.Abs(absDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve directory %s: %w", dir, err)
		}

		if visitedDirs[absDir] {
			return "", fmt.Errorf("potential symlink loop detected in directory %s", absDir)
		}
		visitedDirs[absDir] = true

		configPath := filepath.Join(absDir, FileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", fmt.Errorf("configuration file %s not found in any parent directory", FileName)
		}

		dir = parent
	}
}
