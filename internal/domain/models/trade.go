package models

import "time"

// Trade is one simulated position: opened on the last bar of a window that
// produced a non-NONE signal, closed a fixed holding period later.
// ReturnPct is signed so a correct prediction is positive; for down-expecting
// signals the raw forward return is negated (short model) when the scoring
// policy inverts shorts.
type Trade struct {
	Symbol     string        `json:"symbol"`
	Config     Configuration `json:"config"`
	Signal     Signal        `json:"signal"`
	EntryDate  time.Time     `json:"entry_date"`
	EntryPrice float64       `json:"entry_price"`
	ExitDate   time.Time     `json:"exit_date"`
	ExitPrice  float64       `json:"exit_price"`
	ReturnPct  float64       `json:"return_pct"`
	Metrics    WindowMetrics `json:"metrics_at_entry"`
}

// Correct reports whether the trade's prediction paid off.
func (t Trade) Correct() bool { return t.ReturnPct > 0 }

// ConfigResult aggregates all trades sharing a configuration, optionally
// split further by signal label. Computed once, never mutated.
type ConfigResult struct {
	Config          Configuration `json:"config"`
	Signal          Signal        `json:"signal,omitempty"` // empty when grouped by configuration only
	TradeCount      int           `json:"trade_count"`
	SymbolCount     int           `json:"symbol_count"`
	HitRatePct      float64       `json:"hit_rate_pct"`
	MeanReturnPct   float64       `json:"mean_return_pct"`
	ReturnStddevPct float64       `json:"return_stddev_pct"`
	// 95% half-width on the hit rate via the normal approximation.
	ConfidencePct float64 `json:"confidence_interval_pct"`
	// LowSample marks groups below the minimum trade count; they are excluded
	// from ranking rather than reported with an unreliable hit rate.
	LowSample bool `json:"low_sample"`
	// Overlapping flags that consecutive trades share bars and are therefore
	// autocorrelated samples. Always true for the sliding-window simulator.
	Overlapping bool `json:"overlapping"`
}

// LiveSignal is a latest-window classification for one symbol, produced by
// the scan path rather than the backtest path.
type LiveSignal struct {
	Symbol  string        `json:"symbol"`
	Signal  Signal        `json:"signal"`
	Price   float64       `json:"price"`
	AsOf    time.Time     `json:"as_of"`
	Metrics WindowMetrics `json:"metrics"`
}

// ScreenResult is one row of the volume screen: a symbol whose recent dollar
// volume runs unusually hot against its trailing baseline.
type ScreenResult struct {
	Symbol            string  `json:"symbol"`
	VolumeRatio       float64 `json:"volume_ratio"`
	AvgDollarVolume   float64 `json:"avg_dollar_volume"`
	CurrentPrice      float64 `json:"current_price"`
	PriceChange7Dpct  float64 `json:"price_change_7d_pct"`
	PriceChange30Dpct float64 `json:"price_change_30d_pct"`
}
