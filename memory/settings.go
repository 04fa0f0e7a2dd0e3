package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.SettingsStore = (*SettingsStore)(nil)

// SettingsStore keeps the raw settings map in memory.
type SettingsStore struct {
	mu       sync.Mutex
	settings indexnow.Settings
}

// NewSettingsStore returns a store seeded with a copy of initial.
func NewSettingsStore(initial indexnow.Settings) *SettingsStore {
	return &SettingsStore{settings: maps.Clone(initial)}
}

// LoadSettings returns a copy of the stored map.
func (s *SettingsStore) LoadSettings(_ context.Context) (indexnow.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.settings), nil
}

// SaveSettings replaces the stored map with a copy of settings.
func (s *SettingsStore) SaveSettings(_ context.Context, settings indexnow.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = maps.Clone(settings)
	return nil
}

// DeleteSettings forgets the stored map.
func (s *SettingsStore) DeleteSettings(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = nil
	return nil
}
