// Package fsstore keeps project documents on the local filesystem.
package fsstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/repository"
)

// ConfigFileName is the config document stored at every project root.
const ConfigFileName = "project_config.json"

// ConfigStore implements project.ConfigRepository.
type ConfigStore struct{}

// NewConfigStore creates a config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// ConfigPath returns the config document path of a project root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFileName)
}

// Lookup reads the config of root. A missing document is reported through
// found, not as an error.
func (s *ConfigStore) Lookup(root string) (*project.Config, bool, error) {
	path := ConfigPath(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg project.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &cfg, true, nil
}

// Load reads the config of root and fails with repository.ErrNotFound when
// the document is missing.
func (s *ConfigStore) Load(root string) (*project.Config, error) {
	cfg, found, err := s.Lookup(root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", ConfigPath(root), repository.ErrNotFound)
	}
	return cfg, nil
}

// Write replaces the config document of root atomically.
func (s *ConfigStore) Write(root string, cfg *project.Config) error {
	if cfg == nil {
		return repository.ErrInvalidInput
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return writeFileAtomic(ConfigPath(root), append(data, '\n'))
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
