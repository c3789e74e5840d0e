package window

import (
	"math"

	"DarkScan/internal/domain/models"
)

// BaselineBars is how far the volume baseline trails behind the window.
const BaselineBars = 10

// Analyzer computes per-window scalar metrics from daily bars. It is
// stateless and safe for concurrent use.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Compute derives the metrics for the window s.Bars[start : start+length].
// Every ratio degenerate at zero denominators substitutes a neutral value
// instead of returning an error; a window always yields usable metrics.
func (a *Analyzer) Compute(s *models.Series, start, length int) models.WindowMetrics {
	bars := s.Bars[start : start+length]

	m := models.WindowMetrics{
		VolumeRatio: volumeRatio(s.Bars, start, length),
	}

	first := bars[0].Close
	last := bars[len(bars)-1].Close
	if first > 0 {
		m.PriceChangePct = (last - first) / first * 100
	}

	m.PriceVolatilityPct = volatilityPct(bars)
	m.OffExchangePct, m.OffExchangeTrend = offExchange(bars)
	return m
}

// volumeRatio compares the window's mean volume against the mean of the
// BaselineBars bars immediately preceding it. A short or zero baseline
// yields the neutral 1.0; a partial baseline is too noisy to trust.
func volumeRatio(bars []models.Bar, start, length int) float64 {
	if start < BaselineBars {
		return 1.0
	}
	lo := start - BaselineBars
	baseSum := 0.0
	for _, b := range bars[lo:start] {
		baseSum += float64(b.Volume)
	}
	base := baseSum / float64(BaselineBars)
	if base <= 0 {
		return 1.0
	}
	winSum := 0.0
	for _, b := range bars[start : start+length] {
		winSum += float64(b.Volume)
	}
	return winSum / float64(length) / base
}

// volatilityPct is the coefficient of variation of closes, in percent.
func volatilityPct(bars []models.Bar) float64 {
	n := float64(len(bars))
	sum := 0.0
	sum2 := 0.0
	for _, b := range bars {
		sum += b.Close
		sum2 += b.Close * b.Close
	}
	mean := sum / n
	if mean <= 0 {
		return 0
	}
	variance := sum2/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance) / mean * 100
}

// offExchange returns the mean daily off-exchange share over days that
// reported volume, and the trend from the first to the last such day.
// Windows with no reporting days yield 0, 0.
func offExchange(bars []models.Bar) (pct, trend float64) {
	sum := 0.0
	n := 0
	firstSet := false
	var firstPct, lastPct float64
	for _, b := range bars {
		if b.Volume <= 0 {
			continue
		}
		p := b.OffExchangePct()
		sum += p
		n++
		if !firstSet {
			firstPct = p
			firstSet = true
		}
		lastPct = p
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), lastPct - firstPct
}
