package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GlobalConfigDir returns the directory holding the global config file.
// BB_CONFIG_DIR wins; macOS uses ~/.config like other CLI tools rather than
// ~/Library/Application Support.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, ".config", AppName), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// GlobalConfigPath returns the path of the global config file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, globalConfigFileName), nil
}

// LocalConfigPaths returns candidate local config files ordered from highest
// to lowest priority: cwd and each ancestor up to the filesystem root, then
// repoRoot if the walk did not already pass through it.
// Empty strings for cwd or repoRoot are handled gracefully.
func LocalConfigPaths(cwd, repoRoot string) []string {
	var paths []string
	seen := make(map[string]bool)

	addPath := func(dir string) {
		if dir == "" {
			return
		}
		path := filepath.Join(dir, localConfigFileName)
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	if cwd != "" {
		current := filepath.Clean(cwd)
		for {
			addPath(current)
			parent := filepath.Dir(current)
			if parent == current {
				break // reached filesystem root
			}
			current = parent
		}
	}

	addPath(repoRoot)

	return paths
}
