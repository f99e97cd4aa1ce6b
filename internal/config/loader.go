package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	clog "github.com/charmbracelet/log"
)

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	// Exists returns true if the path exists and is a file (not a directory).
	Exists(path string) bool
}

// OSFileSystem implements FileSystem using the real OS.
type OSFileSystem struct{}

// Exists returns true if the path exists and is a file (not a directory).
func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Store reads and writes the global and local configuration files.
type Store struct {
	fs         FileSystem
	globalPath string
	log        *clog.Logger
}

// NewStore creates a Store for the given global config path.
func NewStore(fs FileSystem, globalPath string, logger *clog.Logger) *Store {
	return &Store{
		fs:         fs,
		globalPath: globalPath,
		log:        logger.WithPrefix("config"),
	}
}

// NewDefaultStore creates a Store that uses the real OS file system and the
// platform global config path.
func NewDefaultStore(logger *clog.Logger) (*Store, error) {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return NewStore(OSFileSystem{}, path, logger), nil
}

// GlobalPath returns the path of the global config file.
func (s *Store) GlobalPath() string {
	return s.globalPath
}

// LoadGlobal reads the global config. A missing file yields an empty config.
func (s *Store) LoadGlobal() (GlobalConfig, error) {
	var cfg GlobalConfig

	if !s.fs.Exists(s.globalPath) {
		s.log.Debug("No global config file", "path", s.globalPath)
		return cfg, nil
	}

	metadata, err := toml.DecodeFile(s.globalPath, &cfg)
	if err != nil {
		return GlobalConfig{}, fmt.Errorf("failed to parse %s: %w", s.globalPath, err)
	}

	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		s.log.Warn("unknown config keys", "path", s.globalPath, "keys", undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return GlobalConfig{}, fmt.Errorf("invalid config %s: %w", s.globalPath, err)
	}

	s.log.Debug("Loaded global config", "path", s.globalPath, "profiles", cfg.ProfileNames())
	return cfg, nil
}

// LoadLocal finds the nearest local config file starting at cwd, falling
// back to repoRoot. Returns (nil, "", nil) when none exists.
func (s *Store) LoadLocal(cwd, repoRoot string) (*ProjectConfig, string, error) {
	for _, path := range LocalConfigPaths(cwd, repoRoot) {
		if !s.fs.Exists(path) {
			continue
		}

		var local LocalConfig
		metadata, err := toml.DecodeFile(path, &local)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
			s.log.Warn("unknown config keys", "path", path, "keys", undecoded)
		}

		s.log.Debug("Loaded local config", "path", path)
		if local.Project == nil {
			return &ProjectConfig{}, path, nil
		}
		return local.Project, path, nil
	}

	s.log.Debug("No local config file found", "cwd", cwd, "repoRoot", repoRoot)
	return nil, "", nil
}
