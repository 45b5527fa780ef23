package strategy

import (
	"fmt"
	"math"

	"StockScreener/internal/model"
)

const longTermReason = "stable technicals, suitable for medium/long-term holding"

// Categorize buckets scored quotes with first-fit assignment under the
// policy's capacity. Quotes are taken in the order given (already ranked
// by liquidity) and each lands in at most one bucket.
func (p Policy) Categorize(scored []model.ScoredQuote) *model.RecommendationSet {
	set := model.NewRecommendationSet()
	c := p.Capacity

	for _, sq := range scored {
		shortFull := len(set.ShortTerm) >= c.ShortTerm
		longFull := len(set.LongTerm) >= c.LongTerm
		weakFull := len(set.WeakStocks) >= c.WeakStocks
		if shortFull && longFull && weakFull {
			break
		}

		switch {
		case sq.Score >= p.ShortTermMinScore && !shortFull:
			set.ShortTerm = append(set.ShortTerm, p.shortTerm(sq))
		case sq.Score >= p.LongTermMinScore && !longFull:
			set.LongTerm = append(set.LongTerm, p.longTerm(sq))
		case sq.Score <= p.WeakMaxScore && !weakFull:
			set.WeakStocks = append(set.WeakStocks, weakAlert(sq))
		}
	}
	return set
}

// Evaluate scores and categorizes quotes in one pass.
func (p Policy) Evaluate(quotes []model.Quote) *model.RecommendationSet {
	return p.Categorize(p.ScoreAll(quotes))
}

func (p Policy) shortTerm(sq model.ScoredQuote) model.Recommendation {
	target, stop := targetAndStop(sq.Close, p.ShortTermBand)
	return model.Recommendation{
		Kind:         model.KindShortTerm,
		Code:         sq.Code,
		Name:         sq.Name,
		CurrentPrice: sq.Close,
		Reason:       fmt.Sprintf("today's gain %.1f%%, strong momentum", sq.ChangePercent),
		TargetPrice:  target,
		StopLoss:     stop,
		TradeValue:   sq.TradeValue,
	}
}

func (p Policy) longTerm(sq model.ScoredQuote) model.Recommendation {
	target, stop := targetAndStop(sq.Close, p.LongTermBand)
	return model.Recommendation{
		Kind:         model.KindLongTerm,
		Code:         sq.Code,
		Name:         sq.Name,
		CurrentPrice: sq.Close,
		Reason:       longTermReason,
		TargetPrice:  target,
		StopLoss:     stop,
		TradeValue:   sq.TradeValue,
	}
}

func weakAlert(sq model.ScoredQuote) model.Recommendation {
	return model.Recommendation{
		Kind:         model.KindWeakAlert,
		Code:         sq.Code,
		Name:         sq.Name,
		CurrentPrice: sq.Close,
		AlertReason:  fmt.Sprintf("today's loss %.1f%%, watch risk", math.Abs(sq.ChangePercent)),
		TradeValue:   sq.TradeValue,
	}
}
