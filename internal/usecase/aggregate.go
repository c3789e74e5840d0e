package usecase

import (
	"math"
	"sort"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
)

// Aggregator folds a trade pool into per-group statistics and ranks them.
// Pure computation; trade order never affects the output.
type Aggregator struct {
	minTrades int
}

// NewAggregator sets the sample floor. Groups below it are kept in the
// output with LowSample set but sort after every well-sampled group.
func NewAggregator(minTrades int) *Aggregator {
	return &Aggregator{minTrades: minTrades}
}

// Aggregate groups trades by configuration, or configuration and signal,
// and computes the per-group statistics.
func (a *Aggregator) Aggregate(trades []*models.Trade, groupBy drepo.GroupBy) []*models.ConfigResult {
	type group struct {
		cfg     models.Configuration
		signal  models.Signal
		returns []float64
		wins    int
		symbols map[string]struct{}
	}

	groups := map[string]*group{}
	var order []string
	for _, t := range trades {
		key := t.Config.Key()
		if groupBy == drepo.GroupByConfigSignal {
			key += "|" + string(t.Signal)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{cfg: t.Config, symbols: map[string]struct{}{}}
			if groupBy == drepo.GroupByConfigSignal {
				g.signal = t.Signal
			}
			groups[key] = g
			order = append(order, key)
		}
		g.returns = append(g.returns, t.ReturnPct)
		if t.Correct() {
			g.wins++
		}
		g.symbols[t.Symbol] = struct{}{}
	}

	results := make([]*models.ConfigResult, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		r := &models.ConfigResult{
			Config:      g.cfg,
			Signal:      g.signal,
			TradeCount:  len(g.returns),
			SymbolCount: len(g.symbols),
			LowSample:   len(g.returns) < a.minTrades,
			Overlapping: true,
		}
		r.HitRatePct = float64(g.wins) / float64(len(g.returns)) * 100
		r.MeanReturnPct, r.ReturnStddevPct = summarize(g.returns)
		r.ConfidencePct = ConfidenceHalfWidth(r.HitRatePct, r.TradeCount)
		results = append(results, r)
	}

	Rank(results)
	return results
}

// Rank orders results best-first: hit rate, then sample size, then mean
// return. Low-sample groups always sort below well-sampled ones; their hit
// rates are noise.
func Rank(results []*models.ConfigResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.LowSample != b.LowSample {
			return !a.LowSample
		}
		if a.HitRatePct != b.HitRatePct {
			return a.HitRatePct > b.HitRatePct
		}
		if a.TradeCount != b.TradeCount {
			return a.TradeCount > b.TradeCount
		}
		return a.MeanReturnPct > b.MeanReturnPct
	})
}

// Filter returns only the well-sampled results, preserving order.
func Filter(results []*models.ConfigResult) []*models.ConfigResult {
	out := make([]*models.ConfigResult, 0, len(results))
	for _, r := range results {
		if !r.LowSample {
			out = append(out, r)
		}
	}
	return out
}

// ConfidenceHalfWidth is the 95% normal-approximation half-width on the hit
// rate, in percentage points. Zero when n <= 1.
func ConfidenceHalfWidth(hitRatePct float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	p := hitRatePct / 100
	return 1.96 * math.Sqrt(p*(1-p)/float64(n)) * 100
}

func summarize(returns []float64) (mean, stddev float64) {
	n := float64(len(returns))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	mean = sum / n
	sum2 := 0.0
	for _, r := range returns {
		d := r - mean
		sum2 += d * d
	}
	return mean, math.Sqrt(sum2 / n)
}
