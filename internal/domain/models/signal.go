package models

// Signal is the discrete label the classifier assigns to one window.
// Which subset is reachable depends on the active rule family.
type Signal string

const (
	SignalNone                 Signal = "NONE"
	SignalBuyWeak              Signal = "BUY_WEAK"
	SignalBuyModerate          Signal = "BUY_MODERATE"
	SignalBuyStrong            Signal = "BUY_STRONG"
	SignalSellWeak             Signal = "SELL_WEAK"
	SignalSellModerate         Signal = "SELL_MODERATE"
	SignalSellStrong           Signal = "SELL_STRONG"
	SignalAccumulationModerate Signal = "ACCUMULATION_MODERATE"
	SignalAccumulationStrong   Signal = "ACCUMULATION_STRONG"
	SignalDistribution         Signal = "DISTRIBUTION"
)

// Direction returns +1 for up-expecting signals (BUY/ACCUMULATION family),
// -1 for down-expecting ones (SELL/DISTRIBUTION family), and 0 for NONE.
func (s Signal) Direction() int {
	switch s {
	case SignalBuyWeak, SignalBuyModerate, SignalBuyStrong,
		SignalAccumulationModerate, SignalAccumulationStrong:
		return 1
	case SignalSellWeak, SignalSellModerate, SignalSellStrong,
		SignalDistribution:
		return -1
	default:
		return 0
	}
}

// Strength orders signals by conviction tier: 3 for strong, 2 for moderate
// and DISTRIBUTION, 1 for weak, 0 for NONE.
func (s Signal) Strength() int {
	switch s {
	case SignalBuyStrong, SignalSellStrong, SignalAccumulationStrong:
		return 3
	case SignalBuyModerate, SignalSellModerate, SignalAccumulationModerate, SignalDistribution:
		return 2
	case SignalBuyWeak, SignalSellWeak:
		return 1
	default:
		return 0
	}
}

// WindowMetrics are the scalar features derived from one analysis window.
// They are recomputed fresh per window and only persisted as a copy on the
// trade they triggered.
type WindowMetrics struct {
	VolumeRatio        float64 `json:"volume_ratio"`
	PriceChangePct     float64 `json:"price_change_pct"`
	PriceVolatilityPct float64 `json:"price_volatility_pct"`
	OffExchangePct     float64 `json:"off_exchange_pct"`
	OffExchangeTrend   float64 `json:"off_exchange_trend"`
}
