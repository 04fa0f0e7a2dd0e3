// Package viper provides a file-backed indexnow.SettingsStore with
// environment overrides.
package viper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/indexnow"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix is prepended to setting keys to form environment variable
// names, e.g. INDEXNOW_KEY.
const DefaultEnvPrefix = "INDEXNOW"

// Ensure SettingsStore implements indexnow.SettingsStore.
var _ indexnow.SettingsStore = (*SettingsStore)(nil)

// SettingsStore reads settings from a config file (YAML, JSON or TOML, chosen
// by extension) and lets environment variables override individual keys.
// Saving writes the file only; environment overrides keep applying on load.
type SettingsStore struct {
	mu        sync.Mutex
	path      string
	envPrefix string
}

// Option configures a SettingsStore.
type Option func(*SettingsStore)

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(s *SettingsStore) {
		s.envPrefix = prefix
	}
}

// NewSettingsStore creates a SettingsStore for the file at path.
func NewSettingsStore(path string, opts ...Option) *SettingsStore {
	s := &SettingsStore{path: path, envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSettings returns the file contents merged with environment overrides.
// A missing file yields only the overrides.
func (s *SettingsStore) LoadSettings(_ context.Context) (indexnow.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.newViper()
	if s.envPrefix != "" {
		v.SetEnvPrefix(s.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		for _, key := range indexnow.SettingKeys {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
			}
		}
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	return indexnow.Settings(v.AllSettings()), nil
}

// SaveSettings writes settings to the file, creating its directory if needed.
func (s *SettingsStore) SaveSettings(_ context.Context, settings indexnow.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := s.newViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DeleteSettings removes the file.
func (s *SettingsStore) DeleteSettings(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	return nil
}

func (s *SettingsStore) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	if filepath.Ext(s.path) == "" {
		v.SetConfigType("yaml")
	}
	return v
}
