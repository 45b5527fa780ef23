package model

// Quote is one exchange instrument in a snapshot.
type Quote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Close         float64 `json:"close"`
	ChangePercent float64 `json:"change_percent"`
	TradeValue    float64 `json:"trade_value"` // price × volume, liquidity proxy
}

// ScoredQuote is a Quote with its heuristic score attached.
type ScoredQuote struct {
	Quote
	Score int `json:"score"`
}
