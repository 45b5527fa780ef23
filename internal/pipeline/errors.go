package pipeline

import (
	"context"
	"errors"
	"fmt"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
)

var (
	// ErrTierTimeout is reported when a tier misses its deadline.
	ErrTierTimeout = errors.New("tier timed out")
	// ErrAllTiersExhausted is returned when every tier and the minimal
	// fallback failed. It is the only run error that maps to a failing exit.
	ErrAllTiersExhausted = errors.New("all tiers exhausted")

	errTierPanic = errors.New("tier panicked")
)

// TierFailure records why a tier produced no result.
type TierFailure struct {
	Tier    string
	Outcome model.AttemptOutcome
	Err     error
}

func (e *TierFailure) Error() string {
	return fmt.Sprintf("tier %s: %s: %v", e.Tier, e.Outcome, e.Err)
}

func (e *TierFailure) Unwrap() error { return e.Err }

func classify(err error) model.AttemptOutcome {
	switch {
	case err == nil:
		return model.OutcomeSuccess
	case errors.Is(err, ErrTierTimeout), errors.Is(err, context.DeadlineExceeded):
		return model.OutcomeTimeout
	case errors.Is(err, collector.ErrDataUnavailable):
		return model.OutcomeDataUnavailable
	default:
		return model.OutcomeException
	}
}
