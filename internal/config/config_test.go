package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ozon-extractor/internal/types"
)

func TestFromEnv_KeepsDefaults(t *testing.T) {
	cfg, err := FromEnv(types.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("EXTRACTOR_PRICE_TIMEOUT", "5s")
	t.Setenv("EXTRACTOR_SETTLE_DELAY", "1s-2s")
	t.Setenv("EXTRACTOR_LANGUAGES", "en-US,en")
	t.Setenv("EXTRACTOR_REQUIRE_PRICE", "false")
	t.Setenv("EXTRACTOR_SELECTOR_VARIANT", "div.swatch")

	cfg, err := FromEnv(types.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.PriceTimeout)
	assert.Equal(t, types.Jitter{Min: time.Second, Max: 2 * time.Second}, cfg.SettleDelay)
	assert.Equal(t, []string{"en-US", "en"}, cfg.Languages)
	assert.False(t, cfg.RequirePrice)
	assert.Equal(t, "div.swatch", cfg.Selectors.Variant)
	// untouched fields keep defaults
	assert.Equal(t, "div.pdp_v3.pdp_v4", cfg.Selectors.MainImage)
	assert.Equal(t, 500, cfg.ScrollStep)
}

func TestFromEnv_InvalidJitter(t *testing.T) {
	t.Setenv("EXTRACTOR_HOVER_DELAY", "slow")

	_, err := FromEnv(types.DefaultConfig())

	assert.Error(t, err)
}
