package mock

import (
	"context"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a mock implementation of indexnow.SettingsStore.
type SettingsStore struct {
	LoadSettingsFn   func(ctx context.Context) (indexnow.Settings, error)
	SaveSettingsFn   func(ctx context.Context, s indexnow.Settings) error
	DeleteSettingsFn func(ctx context.Context) error
}

func (s *SettingsStore) LoadSettings(ctx context.Context) (indexnow.Settings, error) {
	return s.LoadSettingsFn(ctx)
}

func (s *SettingsStore) SaveSettings(ctx context.Context, settings indexnow.Settings) error {
	return s.SaveSettingsFn(ctx, settings)
}

func (s *SettingsStore) DeleteSettings(ctx context.Context) error {
	return s.DeleteSettingsFn(ctx)
}
