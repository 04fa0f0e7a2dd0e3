package indexnow

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Raw setting keys as stored by a SettingsStore.
const (
	SettingEnabled                  = "enabled"
	SettingKey                      = "key"
	SettingEndpoint                 = "endpoint"
	SettingKeyLocation              = "key_location"
	SettingSiteURL                  = "site_url"
	SettingResourceTypes            = "post_types"
	SettingSubmitSitemap            = "submit_sitemap"
	SettingSitemapPath              = "sitemap_path"
	SettingMaxURLsPerSubmit         = "max_urls_per_submit"
	SettingMinSecondsBetweenSubmits = "min_seconds_between_submits"
	SettingDebug                    = "debug"
	SettingPurgeOnUninstall         = "purge_on_uninstall"
	SettingOnFailure                = "on_failure"
)

// SettingKeys lists every recognized raw setting key.
var SettingKeys = []string{
	SettingEnabled,
	SettingKey,
	SettingEndpoint,
	SettingKeyLocation,
	SettingSiteURL,
	SettingResourceTypes,
	SettingSubmitSitemap,
	SettingSitemapPath,
	SettingMaxURLsPerSubmit,
	SettingMinSecondsBetweenSubmits,
	SettingDebug,
	SettingPurgeOnUninstall,
	SettingOnFailure,
}

// Defaults and bounds applied by Normalize.
const (
	DefaultEndpoint    = "https://www.bing.com/indexnow"
	DefaultSitemapPath = "/sitemap.xml"

	DefaultMaxURLsPerSubmit = 100
	MinURLsPerSubmit        = 1
	MaxURLsPerSubmit        = 1000

	DefaultMinSecondsBetweenSubmits = 10
	MaxSecondsBetweenSubmits        = 86400
)

// DefaultResourceTypes is used whenever the configured set is empty.
var DefaultResourceTypes = []string{"post", "page"}

// FailurePolicy decides what happens to a batch whose delivery failed.
type FailurePolicy string

const (
	// RetainOnFailure leaves the batch queued for the next natural trigger.
	RetainOnFailure FailurePolicy = "retain"
	// DiscardOnFailure drops the batch (best-effort, at-most-once).
	DiscardOnFailure FailurePolicy = "discard"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,128}$`)

// Settings is the raw, untyped settings mapping persisted by a SettingsStore.
type Settings map[string]any

// Config is a validated settings snapshot. Obtain one with Normalize or
// LoadConfig; it is never mutated in place.
type Config struct {
	Enabled                  bool
	Key                      string
	Endpoint                 string
	KeyLocation              string
	SiteURL                  string
	ResourceTypes            []string
	SubmitSitemap            bool
	SitemapPath              string
	MaxURLsPerSubmit         int
	MinSecondsBetweenSubmits int
	Debug                    bool
	PurgeOnUninstall         bool
	OnFailure                FailurePolicy
}

// SettingsStore persists the raw settings mapping.
type SettingsStore interface {
	// LoadSettings returns the stored mapping, or an empty mapping if nothing
	// has been saved yet.
	LoadSettings(ctx context.Context) (Settings, error)

	// SaveSettings replaces the stored mapping.
	SaveSettings(ctx context.Context, s Settings) error

	// DeleteSettings removes the stored mapping.
	DeleteSettings(ctx context.Context) error
}

// LoadConfig reads the stored settings and normalizes them.
func LoadConfig(ctx context.Context, store SettingsStore, publicTypes []string) (*Config, error) {
	raw, err := store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return Normalize(raw, publicTypes), nil
}

// Normalize converts a raw mapping into a Config. It never fails: every field
// that is absent or malformed falls back to its default.
//
// publicTypes is the set of resource types the content system exposes
// publicly. When it is empty, any well-formed type name is accepted.
func Normalize(raw Settings, publicTypes []string) *Config {
	c := &Config{
		Enabled:                  boolValue(raw, SettingEnabled, true),
		Key:                      normalizeKey(stringValue(raw, SettingKey)),
		Endpoint:                 normalizeHTTPURL(stringValue(raw, SettingEndpoint)),
		KeyLocation:              normalizeHTTPURL(stringValue(raw, SettingKeyLocation)),
		SiteURL:                  normalizeOrigin(stringValue(raw, SettingSiteURL)),
		ResourceTypes:            normalizeResourceTypes(raw[SettingResourceTypes], publicTypes),
		SubmitSitemap:            boolValue(raw, SettingSubmitSitemap, false),
		SitemapPath:              normalizeSitemapPath(stringValue(raw, SettingSitemapPath)),
		MaxURLsPerSubmit:         clamp(intValue(raw, SettingMaxURLsPerSubmit, DefaultMaxURLsPerSubmit), MinURLsPerSubmit, MaxURLsPerSubmit),
		MinSecondsBetweenSubmits: clamp(intValue(raw, SettingMinSecondsBetweenSubmits, DefaultMinSecondsBetweenSubmits), 0, MaxSecondsBetweenSubmits),
		Debug:                    boolValue(raw, SettingDebug, false),
		PurgeOnUninstall:         boolValue(raw, SettingPurgeOnUninstall, false),
		OnFailure:                RetainOnFailure,
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if FailurePolicy(strings.ToLower(stringValue(raw, SettingOnFailure))) == DiscardOnFailure {
		c.OnFailure = DiscardOnFailure
	}
	return c
}

// Settings converts the config back into a raw mapping suitable for saving.
func (c *Config) Settings() Settings {
	return Settings{
		SettingEnabled:                  c.Enabled,
		SettingKey:                      c.Key,
		SettingEndpoint:                 c.Endpoint,
		SettingKeyLocation:              c.KeyLocation,
		SettingSiteURL:                  c.SiteURL,
		SettingResourceTypes:            slices.Clone(c.ResourceTypes),
		SettingSubmitSitemap:            c.SubmitSitemap,
		SettingSitemapPath:              c.SitemapPath,
		SettingMaxURLsPerSubmit:         c.MaxURLsPerSubmit,
		SettingMinSecondsBetweenSubmits: c.MinSecondsBetweenSubmits,
		SettingDebug:                    c.Debug,
		SettingPurgeOnUninstall:         c.PurgeOnUninstall,
		SettingOnFailure:                string(c.OnFailure),
	}
}

// MaskedSettings is Settings with the key masked by MaskKey, for display.
func (c *Config) MaskedSettings() Settings {
	s := c.Settings()
	s[SettingKey] = MaskKey(c.Key)
	return s
}

// MaskKey keeps the first four characters of key and replaces the rest with
// asterisks. Keys of four characters or fewer are masked entirely.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// AllowsResourceType reports whether change events for typ should be queued.
func (c *Config) AllowsResourceType(typ string) bool {
	return slices.Contains(c.ResourceTypes, sanitizeTypeName(typ))
}

// ValidKey reports whether key has the shape accepted when settings are
// updated. Stored keys are not checked against it.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func normalizeKey(s string) string {
	return strings.TrimSpace(s)
}

// normalizeHTTPURL returns s if it is an absolute http(s) URL with a host.
func normalizeHTTPURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// normalizeOrigin reduces an absolute URL to scheme://host[:port].
func normalizeOrigin(s string) string {
	s = normalizeHTTPURL(s)
	if s == "" {
		return ""
	}
	u, _ := url.Parse(s)
	return (&url.URL{Scheme: u.Scheme, Host: strings.ToLower(u.Host)}).String()
}

func normalizeSitemapPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSitemapPath
	}
	return "/" + strings.TrimLeft(s, "/")
}

func normalizeResourceTypes(v any, publicTypes []string) []string {
	var public map[string]bool
	if len(publicTypes) > 0 {
		public = make(map[string]bool, len(publicTypes))
		for _, t := range publicTypes {
			public[sanitizeTypeName(t)] = true
		}
	}

	var out []string
	for _, t := range stringSlice(v) {
		t = sanitizeTypeName(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		if public != nil && !public[t] {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return slices.Clone(DefaultResourceTypes)
	}
	return out
}

// sanitizeTypeName lowercases and keeps only [a-z0-9_-].
func sanitizeTypeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, s)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func stringValue(raw Settings, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func boolValue(raw Settings, key string, def bool) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	switch v := v.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		switch s {
		case "", "0", "false", "no", "off":
			return false
		default:
			return true
		}
	default:
		return def
	}
}

func intValue(raw Settings, key string, def int) int {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

func stringSlice(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(v, ",")
	default:
		return nil
	}
}
