package model

// RecommendationKind identifies which bucket a recommendation belongs to.
type RecommendationKind string

const (
	KindShortTerm RecommendationKind = "short_term"
	KindLongTerm  RecommendationKind = "long_term"
	KindWeakAlert RecommendationKind = "weak_alert"
)

// Recommendation is an actionable entry derived from a ScoredQuote.
// WeakAlert entries carry AlertReason and leave TargetPrice/StopLoss zero.
type Recommendation struct {
	Kind         RecommendationKind `json:"kind"`
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	CurrentPrice float64            `json:"current_price"`
	Reason       string             `json:"reason,omitempty"`
	AlertReason  string             `json:"alert_reason,omitempty"`
	TargetPrice  float64            `json:"target_price,omitempty"`
	StopLoss     float64            `json:"stop_loss,omitempty"`
	TradeValue   float64            `json:"trade_value"`
}

// RecommendationSet is the unit handed to the dispatcher and the archiver.
type RecommendationSet struct {
	ShortTerm  []Recommendation `json:"short_term"`
	LongTerm   []Recommendation `json:"long_term"`
	WeakStocks []Recommendation `json:"weak_stocks"`
}

// NewRecommendationSet returns a set with non-nil, empty buckets.
func NewRecommendationSet() *RecommendationSet {
	return &RecommendationSet{
		ShortTerm:  []Recommendation{},
		LongTerm:   []Recommendation{},
		WeakStocks: []Recommendation{},
	}
}

// Total returns the number of recommendations across all buckets.
func (s *RecommendationSet) Total() int {
	if s == nil {
		return 0
	}
	return len(s.ShortTerm) + len(s.LongTerm) + len(s.WeakStocks)
}
