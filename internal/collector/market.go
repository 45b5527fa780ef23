package collector

import (
	"context"

	"github.com/rs/zerolog"

	"StockScreener/internal/model"
)

// MarketSource merges an exchange feed with supplementary feeds into one
// snapshot. The primary feed must succeed; a failing supplement is logged
// and left out. Codes repeated across feeds are collapsed by the Selector,
// which keeps the primary's quote.
type MarketSource struct {
	Primary     QuoteSource
	Supplements []QuoteSource
	Log         zerolog.Logger
}

// NewMarketSource creates a merged source.
func NewMarketSource(primary QuoteSource, log zerolog.Logger, supplements ...QuoteSource) *MarketSource {
	return &MarketSource{Primary: primary, Supplements: supplements, Log: log}
}

func (m *MarketSource) Name() string {
	name := m.Primary.Name()
	for _, s := range m.Supplements {
		name += "+" + s.Name()
	}
	return name
}

func (m *MarketSource) FetchQuotes(ctx context.Context, slot model.TimeSlot) ([]model.Quote, error) {
	quotes, err := m.Primary.FetchQuotes(ctx, slot)
	if err != nil {
		return nil, err
	}
	for _, s := range m.Supplements {
		extra, err := s.FetchQuotes(ctx, slot)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			m.Log.Warn().Err(err).Str("source", s.Name()).Msg("supplementary feed skipped")
			continue
		}
		quotes = append(quotes, extra...)
	}
	return quotes, nil
}
