package window

import (
	"math"
	"testing"
	"time"

	"DarkScan/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func series(closes []float64, vols, offVols []int64) *models.Series {
	s := &models.Series{Symbol: "TEST"}
	for i, c := range closes {
		b := models.Bar{Date: day(i), Close: c}
		if vols != nil {
			b.Volume = vols[i]
		}
		if offVols != nil {
			b.OffExchangeVolume = offVols[i]
		}
		s.Bars = append(s.Bars, b)
	}
	return s
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestVolumeRatioAgainstTrailingBaseline(t *testing.T) {
	// 10 baseline bars at 100, then a 5-bar window at 300: ratio 3.0.
	closes := make([]float64, 15)
	vols := make([]int64, 15)
	for i := range closes {
		closes[i] = 10
		if i < 10 {
			vols[i] = 100
		} else {
			vols[i] = 300
		}
	}
	s := series(closes, vols, nil)
	m := NewAnalyzer().Compute(s, 10, 5)
	if !almostEqual(m.VolumeRatio, 3.0) {
		t.Fatalf("volume ratio = %v, want 3.0", m.VolumeRatio)
	}
}

func TestVolumeRatioNeutralWithoutBaseline(t *testing.T) {
	s := series([]float64{10, 10, 10}, []int64{500, 500, 500}, nil)
	m := NewAnalyzer().Compute(s, 0, 3)
	if m.VolumeRatio != 1.0 {
		t.Fatalf("volume ratio with no preceding bars = %v, want 1.0", m.VolumeRatio)
	}
}

func TestVolumeRatioNeutralOnZeroBaseline(t *testing.T) {
	closes := make([]float64, 13)
	vols := make([]int64, 13)
	for i := range closes {
		closes[i] = 10
		if i >= 10 {
			vols[i] = 400
		}
	}
	s := series(closes, vols, nil)
	m := NewAnalyzer().Compute(s, 10, 3)
	if m.VolumeRatio != 1.0 {
		t.Fatalf("volume ratio with zero baseline = %v, want 1.0", m.VolumeRatio)
	}
}

func TestVolumeRatioNeutralOnPartialBaseline(t *testing.T) {
	// Only 2 trailing bars exist; a hot window must not read as a spike
	// against a baseline that short.
	s := series(
		[]float64{10, 10, 10, 10, 10},
		[]int64{100, 100, 500, 500, 500},
		nil,
	)
	m := NewAnalyzer().Compute(s, 2, 3)
	if m.VolumeRatio != 1.0 {
		t.Fatalf("volume ratio with partial baseline = %v, want 1.0", m.VolumeRatio)
	}
}

func TestPriceChangeAndVolatility(t *testing.T) {
	s := series([]float64{100, 102, 104, 106, 110}, nil, nil)
	m := NewAnalyzer().Compute(s, 0, 5)
	if !almostEqual(m.PriceChangePct, 10.0) {
		t.Fatalf("price change = %v, want 10.0", m.PriceChangePct)
	}
	// Population stddev of closes divided by their mean.
	mean := (100.0 + 102 + 104 + 106 + 110) / 5
	sum2 := 0.0
	for _, c := range []float64{100, 102, 104, 106, 110} {
		sum2 += (c - mean) * (c - mean)
	}
	want := math.Sqrt(sum2/5) / mean * 100
	if !almostEqual(m.PriceVolatilityPct, want) {
		t.Fatalf("volatility = %v, want %v", m.PriceVolatilityPct, want)
	}
}

func TestVolatilityZeroOnFlatSeries(t *testing.T) {
	s := series([]float64{50, 50, 50, 50}, nil, nil)
	m := NewAnalyzer().Compute(s, 0, 4)
	if m.PriceVolatilityPct != 0 {
		t.Fatalf("flat-series volatility = %v, want 0", m.PriceVolatilityPct)
	}
	if m.PriceChangePct != 0 {
		t.Fatalf("flat-series price change = %v, want 0", m.PriceChangePct)
	}
}

func TestOffExchangeSkipsZeroVolumeDays(t *testing.T) {
	s := series(
		[]float64{10, 10, 10, 10},
		[]int64{1000, 0, 1000, 1000},
		[]int64{400, 0, 500, 600},
	)
	m := NewAnalyzer().Compute(s, 0, 4)
	// Shares: 40, (skipped), 50, 60. Mean 50, trend 60-40=20.
	if !almostEqual(m.OffExchangePct, 50) {
		t.Fatalf("off-exchange pct = %v, want 50", m.OffExchangePct)
	}
	if !almostEqual(m.OffExchangeTrend, 20) {
		t.Fatalf("off-exchange trend = %v, want 20", m.OffExchangeTrend)
	}
}

func TestOffExchangeZeroWhenNoVolume(t *testing.T) {
	s := series([]float64{10, 10}, []int64{0, 0}, []int64{0, 0})
	m := NewAnalyzer().Compute(s, 0, 2)
	if m.OffExchangePct != 0 || m.OffExchangeTrend != 0 {
		t.Fatalf("no-volume window = (%v, %v), want (0, 0)", m.OffExchangePct, m.OffExchangeTrend)
	}
}
