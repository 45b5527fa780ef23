package strategy

import "StockScreener/internal/model"

// Score computes the heuristic ranking signal for one quote. It is a cheap
// ordering hint built from the day's price change and liquidity, not a
// forecast.
//
//	change% >  2        → +2
//	0 < change% ≤ 2     → +1
//	-2 ≤ change% < 0    → -1
//	change% < -2        → -2
//	trade value > 1e9   → +1 (independent of the change term)
func (p Policy) Score(q model.Quote) int {
	score := 0
	switch cp := q.ChangePercent; {
	case cp > p.StrongMove:
		score += 2
	case cp > 0:
		score++
	case cp < -p.StrongMove:
		score -= 2
	case cp < 0:
		score--
	}
	if q.TradeValue > p.LiquidityBonusMin {
		score++
	}
	return score
}

// ScoreAll scores quotes in order.
func (p Policy) ScoreAll(quotes []model.Quote) []model.ScoredQuote {
	scored := make([]model.ScoredQuote, len(quotes))
	for i, q := range quotes {
		scored[i] = model.ScoredQuote{Quote: q, Score: p.Score(q)}
	}
	return scored
}
