package strategy

import "github.com/shopspring/decimal"

// Capacity bounds how many recommendations each bucket may hold.
type Capacity struct {
	ShortTerm  int `yaml:"short_term" json:"short_term"`
	LongTerm   int `yaml:"long_term" json:"long_term"`
	WeakStocks int `yaml:"weak_stocks" json:"weak_stocks"`
}

// DefaultCapacity is the canonical bucket capacity.
var DefaultCapacity = Capacity{ShortTerm: 3, LongTerm: 2, WeakStocks: 2}

// MinimalFallbackCapacity is used by the last-resort inline run, which
// never emits weak-stock alerts.
var MinimalFallbackCapacity = Capacity{ShortTerm: 3, LongTerm: 2, WeakStocks: 0}

// PriceBand holds the target/stop multipliers for one horizon.
type PriceBand struct {
	Target decimal.Decimal
	Stop   decimal.Decimal
}

// Policy is the single table of scoring thresholds, capacities and price
// bands shared by every tier. Thresholds and the liquidity bonus are
// product constants; change them here only.
type Policy struct {
	StrongMove        float64 // |change%| above this scores ±2
	LiquidityBonusMin float64 // trade value above this adds +1

	ShortTermMinScore int
	LongTermMinScore  int
	WeakMaxScore      int

	Capacity Capacity

	ShortTermBand PriceBand
	LongTermBand  PriceBand
}

// DefaultPolicy returns the canonical policy.
func DefaultPolicy() Policy {
	return Policy{
		StrongMove:        2,
		LiquidityBonusMin: 1_000_000_000,
		ShortTermMinScore: 2,
		LongTermMinScore:  0,
		WeakMaxScore:      -2,
		Capacity:          DefaultCapacity,
		ShortTermBand: PriceBand{
			Target: decimal.RequireFromString("1.05"),
			Stop:   decimal.RequireFromString("0.97"),
		},
		LongTermBand: PriceBand{
			Target: decimal.RequireFromString("1.08"),
			Stop:   decimal.RequireFromString("0.95"),
		},
	}
}

// WithCapacity returns a copy of p with an explicit capacity override.
func (p Policy) WithCapacity(c Capacity) Policy {
	p.Capacity = c
	return p
}

var tick = decimal.RequireFromString("0.1")

// targetAndStop applies the band to close, rounded to one decimal. If
// rounding lands on or across the current price the value is moved one
// tick away so stop < close < target always holds.
func targetAndStop(close float64, band PriceBand) (target, stop float64) {
	c := decimal.NewFromFloat(close)

	t := c.Mul(band.Target).Round(1)
	if t.LessThanOrEqual(c) {
		t = c.Truncate(1).Add(tick)
	}

	s := c.Mul(band.Stop).Round(1)
	if s.GreaterThanOrEqual(c) {
		s = c.RoundCeil(1).Sub(tick)
	}
	if s.IsNegative() {
		s = decimal.Zero
	}

	return t.InexactFloat64(), s.InexactFloat64()
}
