package collector

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"StockScreener/internal/model"
)

// SlotPolicy bounds one slot's universe: the snapshot is ranked by trade
// value, the top Fetch quotes form the universe and the top Candidates of
// those are scored.
type SlotPolicy struct {
	Fetch      int `yaml:"fetch" json:"fetch"`
	Candidates int `yaml:"candidates" json:"candidates"`
}

// DefaultSlotPolicies is the per-slot universe sizing.
var DefaultSlotPolicies = map[model.TimeSlot]SlotPolicy{
	model.SlotMorningScan:    {Fetch: 200, Candidates: 100},
	model.SlotMidMorningScan: {Fetch: 300, Candidates: 150},
	model.SlotMidDayScan:     {Fetch: 300, Candidates: 150},
	model.SlotAfternoonScan:  {Fetch: 1000, Candidates: 450},
	model.SlotWeeklySummary:  {Fetch: 1000, Candidates: 500},
	model.SlotEmergencyScan:  {Fetch: 200, Candidates: 100},
}

// Selector maps a time slot to its ranked candidate set.
type Selector struct {
	Source   QuoteSource
	Policies map[model.TimeSlot]SlotPolicy
	Log      zerolog.Logger
}

// NewSelector creates a Selector. A nil policies map uses DefaultSlotPolicies.
func NewSelector(src QuoteSource, policies map[model.TimeSlot]SlotPolicy, log zerolog.Logger) *Selector {
	if policies == nil {
		policies = DefaultSlotPolicies
	}
	return &Selector{Source: src, Policies: policies, Log: log}
}

// Select returns the slot's candidates using its policy size.
func (s *Selector) Select(ctx context.Context, slot model.TimeSlot) ([]model.Quote, error) {
	return s.SelectTop(ctx, slot, 0)
}

// SelectTop ranks the full snapshot by trade value, bounds it to the slot's
// Fetch size and keeps the top n (n <= 0 uses the slot policy). An empty feed yields ErrDataUnavailable;
// the caller decides whether to fall back.
func (s *Selector) SelectTop(ctx context.Context, slot model.TimeSlot, n int) ([]model.Quote, error) {
	policy, ok := s.Policies[slot]
	if !ok {
		return nil, fmt.Errorf("no universe policy for slot %s", slot)
	}
	if n <= 0 {
		n = policy.Candidates
	}

	quotes, err := s.Source.FetchQuotes(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Source.Name(), err)
	}
	quotes = sanitize(quotes)
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%s returned no quotes for %s: %w", s.Source.Name(), slot, ErrDataUnavailable)
	}

	ranked := limitQuotes(limitQuotes(RankByLiquidity(quotes), policy.Fetch), n)
	s.Log.Debug().
		Str("source", s.Source.Name()).
		Str("slot", string(slot)).
		Int("fetched", len(quotes)).
		Int("candidates", len(ranked)).
		Msg("universe selected")
	return ranked, nil
}

// RankByLiquidity returns a copy sorted by trade value descending. Ties keep
// source order.
func RankByLiquidity(quotes []model.Quote) []model.Quote {
	ranked := append([]model.Quote(nil), quotes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TradeValue > ranked[j].TradeValue
	})
	return ranked
}

// sanitize drops quotes with a non-positive close and repeated codes,
// keeping the first occurrence.
func sanitize(quotes []model.Quote) []model.Quote {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Code == "" || q.Close <= 0 || q.TradeValue < 0 {
			continue
		}
		if _, dup := seen[q.Code]; dup {
			continue
		}
		seen[q.Code] = struct{}{}
		out = append(out, q)
	}
	return out
}
