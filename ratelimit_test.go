package indexnow_test

import (
	"testing"
	"time"

	"github.com/fwojciec/indexnow"
	"github.com/stretchr/testify/assert"
)

func TestAllowGeneralSubmit(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	interval := 10 * time.Second

	assert.True(t, indexnow.AllowGeneralSubmit(t0, time.Time{}, interval), "never submitted")
	assert.False(t, indexnow.AllowGeneralSubmit(t0.Add(5*time.Second), t0, interval))
	assert.True(t, indexnow.AllowGeneralSubmit(t0.Add(10*time.Second), t0, interval))
	assert.True(t, indexnow.AllowGeneralSubmit(t0.Add(11*time.Second), t0, interval))
	assert.True(t, indexnow.AllowGeneralSubmit(t0, t0, 0), "zero interval")
}

func TestAllowSitemapSubmit(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, indexnow.AllowSitemapSubmit(t0, time.Time{}, indexnow.SitemapCooldown))
	assert.False(t, indexnow.AllowSitemapSubmit(t0.Add(11*time.Hour), t0, indexnow.SitemapCooldown))
	assert.True(t, indexnow.AllowSitemapSubmit(t0.Add(12*time.Hour), t0, indexnow.SitemapCooldown))
}

func TestConfig_MinInterval(t *testing.T) {
	t.Parallel()

	cfg := indexnow.Normalize(indexnow.Settings{indexnow.SettingMinSecondsBetweenSubmits: 45}, nil)

	assert.Equal(t, 45*time.Second, cfg.MinInterval())
}
