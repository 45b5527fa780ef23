package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// Tier is one analyzer implementation in the fallback chain.
type Tier struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context, slot model.TimeSlot) (*model.RecommendationSet, error)
}

// MinimalFallbackTier names the last-resort inline run.
const MinimalFallbackTier = "minimal_fallback"

const minimalCandidates = 20

// ScreeningTier selects the slot universe and categorizes it with policy.
// candidates <= 0 uses the slot's own candidate count.
func ScreeningTier(name string, timeout time.Duration, sel *collector.Selector, candidates int, policy strategy.Policy) Tier {
	return Tier{
		Name:    name,
		Timeout: timeout,
		Run: func(ctx context.Context, slot model.TimeSlot) (*model.RecommendationSet, error) {
			quotes, err := sel.SelectTop(ctx, slot, candidates)
			if err != nil {
				return nil, err
			}
			return policy.Evaluate(quotes), nil
		},
	}
}

// MinimalTier ranks the top 20 by liquidity and never emits weak alerts.
func MinimalTier(sel *collector.Selector, policy strategy.Policy) Tier {
	return ScreeningTier(MinimalFallbackTier, config.MinimalFallbackTimeout, sel, minimalCandidates, policy.WithCapacity(strategy.MinimalFallbackCapacity))
}

// SlotPolicies merges configured slot overrides into the defaults.
func SlotPolicies(overrides map[string]config.SlotConfig) map[model.TimeSlot]collector.SlotPolicy {
	out := make(map[model.TimeSlot]collector.SlotPolicy, len(collector.DefaultSlotPolicies))
	for slot, p := range collector.DefaultSlotPolicies {
		out[slot] = p
	}
	for name, sc := range overrides {
		out[model.TimeSlot(name)] = collector.SlotPolicy{Fetch: sc.Fetch, Candidates: sc.Candidates}
	}
	return out
}

// sourceCache shares one QuoteSource, and so one rate limiter, per name.
type sourceCache struct {
	opts    collector.SourceOptions
	sources map[string]collector.QuoteSource
}

func (c *sourceCache) get(name string) (collector.QuoteSource, error) {
	if src, ok := c.sources[name]; ok {
		return src, nil
	}
	src, err := collector.NewSource(name, c.opts)
	if err != nil {
		return nil, err
	}
	c.sources[name] = src
	return src, nil
}

// BuildTiers creates the ordered tier chain and the minimal fallback from config.
func BuildTiers(cfg *config.Config, policy strategy.Policy, log zerolog.Logger) ([]Tier, Tier, error) {
	cache := &sourceCache{
		opts: collector.SourceOptions{
			OpenAPIURL: cfg.Sources.OpenAPIURL,
			ReportURL:  cfg.Sources.ReportURL,
			TPEXURL:    cfg.Sources.TPEXURL,
			IncludeOTC: cfg.Sources.IncludeOTC,
			Proxy:      cfg.Proxy,
			Timeout:    cfg.Sources.Timeout,
			RateLimit:  cfg.Sources.RateLimit,
			Log:        log,
		},
		sources: make(map[string]collector.QuoteSource),
	}
	policies := SlotPolicies(cfg.Slots)

	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, tc := range cfg.Tiers {
		src, err := cache.get(tc.Source)
		if err != nil {
			return nil, Tier{}, fmt.Errorf("tier %s: %w", tc.Name, err)
		}
		sel := collector.NewSelector(src, policies, log.With().Str("tier", tc.Name).Logger())
		tiers = append(tiers, ScreeningTier(tc.Name, tc.Timeout, sel, tc.Candidates, policy))
	}

	src, err := cache.get(cfg.Sources.Fallback)
	if err != nil {
		return nil, Tier{}, fmt.Errorf("minimal fallback: %w", err)
	}
	sel := collector.NewSelector(src, policies, log.With().Str("tier", MinimalFallbackTier).Logger())
	return tiers, MinimalTier(sel, policy), nil
}
