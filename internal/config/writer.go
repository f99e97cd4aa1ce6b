package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrKeyConflict is returned when a dotted key crosses a non-table value.
	ErrKeyConflict = errors.New("config key conflict")
	// ErrLocalConfigExists is returned by InitLocal when the file already exists.
	ErrLocalConfigExists = errors.New("local configuration already exists")
)

// KeyConflictError reports the segment of a dotted key that already holds
// a value of the wrong kind.
type KeyConflictError struct {
	Key     string
	Segment string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("%v: %q is not a table in key %q", ErrKeyConflict, e.Segment, e.Key)
}

func (e *KeyConflictError) Unwrap() error {
	return ErrKeyConflict
}

// Set writes a single dotted key into the global config file, creating
// intermediate tables as needed. Unrelated keys are preserved; comments are not.
func (s *Store) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	doc, err := s.readDocument()
	if err != nil {
		return err
	}

	if err := setDotted(doc, key, value); err != nil {
		return err
	}

	// Re-validate the typed view so a bad api_url or output_format never lands on disk.
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var typed GlobalConfig
	if _, err := toml.Decode(buf.String(), &typed); err != nil {
		return fmt.Errorf("failed to re-read config: %w", err)
	}
	if err := typed.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := writeFileAtomic(s.globalPath, buf.Bytes()); err != nil {
		return err
	}

	s.log.Debug("Updated config", "path", s.globalPath, "key", key)
	return nil
}

// Get reads a single dotted key from the global config file.
func (s *Store) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	doc, err := s.readDocument()
	if err != nil {
		return "", false, err
	}

	var current any = doc
	for _, part := range strings.Split(key, ".") {
		table, ok := current.(map[string]any)
		if !ok {
			return "", false, nil
		}
		current, ok = table[part]
		if !ok {
			return "", false, nil
		}
	}

	switch v := current.(type) {
	case map[string]any:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

// InitLocal writes a new local config file into dir.
func (s *Store) InitLocal(dir string, project ProjectConfig) (string, error) {
	path := filepath.Join(dir, localConfigFileName)
	if s.fs.Exists(path) {
		return "", fmt.Errorf("%w at %s", ErrLocalConfigExists, path)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(LocalConfig{Project: &project}); err != nil {
		return "", fmt.Errorf("failed to encode local config: %w", err)
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) readDocument() (map[string]any, error) {
	doc := make(map[string]any)
	if !s.fs.Exists(s.globalPath) {
		return doc, nil
	}
	if _, err := toml.DecodeFile(s.globalPath, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.globalPath, err)
	}
	return doc, nil
}

// setDotted assigns value at the dotted key inside doc.
func setDotted(doc map[string]any, key, value string) error {
	parts := strings.Split(key, ".")
	current := doc

	for i, part := range parts[:len(parts)-1] {
		existing, ok := current[part]
		if !ok {
			next := make(map[string]any)
			current[part] = next
			current = next
			continue
		}

		next, isTable := existing.(map[string]any)
		if !isTable {
			return &KeyConflictError{Key: key, Segment: strings.Join(parts[:i+1], ".")}
		}
		current = next
	}

	last := parts[len(parts)-1]
	if _, isTable := current[last].(map[string]any); isTable {
		return &KeyConflictError{Key: key, Segment: key}
	}
	current[last] = value
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
