package collector

import (
	"context"
	"errors"

	"StockScreener/internal/model"
)

// ErrDataUnavailable is returned when a source yields no quotes.
var ErrDataUnavailable = errors.New("quote data unavailable")

// QuoteSource supplies the full market snapshot for a time slot in feed
// order. Ranking and bounding are left to the Selector.
type QuoteSource interface {
	FetchQuotes(ctx context.Context, slot model.TimeSlot) ([]model.Quote, error)
	Name() string
}
