package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/indexnow"
	"gopkg.in/yaml.v3"
)

// stringSettings are taken verbatim from the command line rather than
// decoded as YAML, so a numeric key stays a string.
var stringSettings = []string{
	indexnow.SettingKey,
	indexnow.SettingEndpoint,
	indexnow.SettingKeyLocation,
	indexnow.SettingSiteURL,
	indexnow.SettingSitemapPath,
	indexnow.SettingOnFailure,
}

// Run executes the settings show command.
func (c *SettingsShowCmd) Run(deps *Dependencies) error {
	cfg, err := deps.Service.Config(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	return printSettings(deps, cfg, c.Reveal)
}

// Run executes the settings set command.
func (c *SettingsSetCmd) Run(deps *Dependencies) error {
	patch, err := parsePairs(c.Pairs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}

	cfg, err := deps.Service.UpdateSettings(deps.Ctx, patch)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Settings saved.")
	return printSettings(deps, cfg, false)
}

func printSettings(deps *Dependencies, cfg *indexnow.Config, reveal bool) error {
	settings := cfg.MaskedSettings()
	if reveal {
		settings = cfg.Settings()
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = deps.Stdout.Write(out)
	return err
}

// parsePairs turns name=value arguments into a settings patch. Values are
// decoded as YAML scalars or flow sequences, e.g. "true", "20" or "[post, page]".
func parsePairs(pairs []string) (indexnow.Settings, error) {
	patch := indexnow.Settings{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, indexnow.Errorf(indexnow.EINVALID, "expected name=value, got %q", pair)
		}
		if slices.Contains(stringSettings, name) {
			patch[name] = value
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil {
			return nil, indexnow.Errorf(indexnow.EINVALID, "invalid value for %s: %v", name, err)
		}
		patch[name] = v
	}
	return patch, nil
}
