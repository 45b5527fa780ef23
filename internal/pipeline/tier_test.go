package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

func TestBuildTiers_FromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sources.Fallback = "mock"
	cfg.Tiers = []config.TierConfig{
		{Name: "unified", Source: "mock", Timeout: 90 * time.Second},
		{Name: "optimized", Source: "mock", Timeout: 45 * time.Second, Candidates: 5},
	}

	tiers, minimal, err := BuildTiers(cfg, strategy.DefaultPolicy(), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, "unified", tiers[0].Name)
	assert.Equal(t, 90*time.Second, tiers[0].Timeout)
	assert.Equal(t, "optimized", tiers[1].Name)
	assert.Equal(t, MinimalFallbackTier, minimal.Name)
	assert.Equal(t, config.MinimalFallbackTimeout, minimal.Timeout)

	set, err := tiers[1].Run(context.Background(), model.SlotMorningScan)
	require.NoError(t, err)
	assert.LessOrEqual(t, set.Total(), 5)
}

func TestBuildTiers_UnknownSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sources.Fallback = "mock"
	cfg.Tiers = []config.TierConfig{{Name: "unified", Source: "bloomberg", Timeout: time.Second}}

	_, _, err := BuildTiers(cfg, strategy.DefaultPolicy(), zerolog.Nop())
	assert.Error(t, err)
}

func TestSlotPolicies_Overrides(t *testing.T) {
	p := SlotPolicies(map[string]config.SlotConfig{"morning_scan": {Fetch: 50, Candidates: 10}})
	assert.Equal(t, 50, p[model.SlotMorningScan].Fetch)
	assert.Equal(t, 10, p[model.SlotMorningScan].Candidates)
	assert.Equal(t, 1000, p[model.SlotAfternoonScan].Fetch)
}
