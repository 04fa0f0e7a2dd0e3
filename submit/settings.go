package submit

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/fwojciec/indexnow"
)

// UpdateSettings merges patch over the stored settings, normalizes the result
// and saves it. A malformed key is rejected with EINVALID and nothing is
// saved, so a bad paste never replaces a working key.
func (s *Service) UpdateSettings(ctx context.Context, patch indexnow.Settings) (*indexnow.Config, error) {
	for k := range patch {
		if !slices.Contains(indexnow.SettingKeys, k) {
			return nil, indexnow.Errorf(indexnow.EINVALID, "unknown setting %q", k)
		}
	}
	if v, ok := patch[indexnow.SettingKey]; ok {
		key, _ := v.(string)
		key = strings.TrimSpace(key)
		if key != "" && !indexnow.ValidKey(key) {
			return nil, indexnow.Errorf(indexnow.EINVALID, "IndexNow key looks invalid (expected 8-128 chars: letters, numbers, dashes).")
		}
	}

	raw, err := s.Settings.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	merged := maps.Clone(raw)
	if merged == nil {
		merged = indexnow.Settings{}
	}
	maps.Copy(merged, patch)

	cfg := indexnow.Normalize(merged, s.PublicTypes)
	if err := s.Settings.SaveSettings(ctx, cfg.Settings()); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return cfg, nil
}

// Purge deletes settings, queue, clocks, the last result and the fallback
// task. Unless force is set it only runs when the config opts in with
// PurgeOnUninstall.
func (s *Service) Purge(ctx context.Context, force bool) error {
	if !force {
		cfg, err := s.Config(ctx)
		if err != nil {
			return err
		}
		if !cfg.PurgeOnUninstall {
			return indexnow.Errorf(indexnow.EINVALID, "purge_on_uninstall is off; use force to purge anyway")
		}
	}

	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	if err := s.State.PurgeState(ctx); err != nil {
		return fmt.Errorf("failed to purge state: %w", err)
	}
	if err := s.Settings.DeleteSettings(ctx); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
