package screen

import (
	"context"
	"sort"

	"DarkScan/internal/domain/models"
)

// Params are the screen's fixed knobs. Request fields override the subset a
// caller is allowed to tune; the rest stay at production defaults.
type Params struct {
	MinDollarVolume90D float64
	MinRatio           float64
	SpikeMultiplier    float64
	MinPrice90DAvg     float64
	MinCurrentPrice    float64
	MinDataDays        int
	AllowNegative      bool
}

// DefaultParams returns the production screen settings.
func DefaultParams() Params {
	return Params{
		MinDollarVolume90D: 10_000_000,
		MinRatio:           1.5,
		SpikeMultiplier:    2.0,
		MinPrice90DAvg:     5.0,
		MinCurrentPrice:    10.0,
		MinDataDays:        90,
		AllowNegative:      false,
	}
}

// Shark flags symbols whose trailing-week dollar volume runs hot against the
// prior-quarter baseline while price grinds up, the footprint of a large
// buyer working an order.
type Shark struct {
	params Params
}

func NewShark(params Params) *Shark { return &Shark{params: params} }

// Screen scores each series and returns the hits sorted by score, best first.
// Symbols failing any filter are skipped silently; the screen is a funnel,
// not a validator.
func (s *Shark) Screen(ctx context.Context, series []*models.Series, req models.ScreenRequest) ([]models.ScreenResult, error) {
	p := s.params
	if req.MinDollarVolume > 0 {
		p.MinDollarVolume90D = req.MinDollarVolume
	}
	if req.MinRatio > 0 {
		p.MinRatio = req.MinRatio
	}
	if req.MinPrice > 0 {
		p.MinCurrentPrice = req.MinPrice
	}

	type scored struct {
		models.ScreenResult
		score float64
	}
	var hits []scored
	for _, sr := range series {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		r, score, ok := s.scoreSeries(sr, p)
		if !ok {
			continue
		}
		hits = append(hits, scored{ScreenResult: r, score: score})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	out := make([]models.ScreenResult, len(hits))
	for i, h := range hits {
		out[i] = h.ScreenResult
	}
	return out, nil
}

func (s *Shark) scoreSeries(sr *models.Series, p Params) (models.ScreenResult, float64, bool) {
	bars := sr.Bars
	n := len(bars)
	if n < p.MinDataDays || n < 30 {
		return models.ScreenResult{}, 0, false
	}

	// Trailing week vs the quarter before it, in dollar terms.
	week := bars[n-7:]
	baseLo := n - 97
	if baseLo < 0 {
		baseLo = 0
	}
	base := bars[baseLo : n-7]
	if len(base) == 0 {
		return models.ScreenResult{}, 0, false
	}

	weekUSD := meanDollarVolume(week)
	baseUSD := meanDollarVolume(base)
	if baseUSD < p.MinDollarVolume90D || baseUSD <= 0 {
		return models.ScreenResult{}, 0, false
	}

	q := bars
	if n > 90 {
		q = bars[n-90:]
	}
	if meanClose(q) <= p.MinPrice90DAvg {
		return models.ScreenResult{}, 0, false
	}

	current := bars[n-1].Close
	if current <= p.MinCurrentPrice {
		return models.ScreenResult{}, 0, false
	}

	change7d := pctChange(bars[n-7].Close, current)
	change30d := pctChange(bars[n-30].Close, current)
	if !p.AllowNegative && (change7d <= 0 || change30d <= 0) {
		return models.ScreenResult{}, 0, false
	}

	ratio := weekUSD / baseUSD
	if ratio < p.MinRatio || !passesSpikePattern(bars, p.SpikeMultiplier) {
		return models.ScreenResult{}, 0, false
	}

	r := models.ScreenResult{
		Symbol:            sr.Symbol,
		VolumeRatio:       ratio,
		AvgDollarVolume:   baseUSD,
		CurrentPrice:      current,
		PriceChange7Dpct:  change7d,
		PriceChange30Dpct: change30d,
	}
	return r, ratio * (1 + change7d/100), true
}

// passesSpikePattern rejects symbols whose last four sessions show a volume
// spike followed by three straight down closes: that is distribution into
// strength, not accumulation.
func passesSpikePattern(bars []models.Bar, spikeMultiplier float64) bool {
	n := len(bars)
	if n < 20 {
		return true
	}
	recent := bars[n-20:]
	mean := meanDollarVolume(recent)

	last4 := bars[n-4:]
	spike := dollarVolume(last4[0]) > mean*spikeMultiplier
	if !spike {
		return true
	}
	return !(last4[1].Close < last4[0].Close &&
		last4[2].Close < last4[1].Close &&
		last4[3].Close < last4[2].Close)
}

func dollarVolume(b models.Bar) float64 { return float64(b.Volume) * b.Close }

func meanDollarVolume(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += dollarVolume(b)
	}
	return sum / float64(len(bars))
}

func meanClose(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

func pctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100
}
