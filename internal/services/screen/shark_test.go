package screen

import (
	"context"
	"testing"
	"time"

	"DarkScan/internal/domain/models"
)

// hotSeries builds 120 bars of steady tape and then a hot final week:
// volume triples and price grinds up.
func hotSeries(symbol string) *models.Series {
	s := &models.Series{Symbol: symbol}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		close := 20.0 + float64(i)*0.05
		vol := int64(1_000_000)
		if i >= 113 {
			vol = 3_000_000
			close = 26.0 + float64(i-113)*0.3
		}
		s.Bars = append(s.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Close:  close,
			Volume: vol,
		})
	}
	return s
}

// quietSeries never deviates from baseline volume.
func quietSeries(symbol string) *models.Series {
	s := &models.Series{Symbol: symbol}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Close:  20.0 + float64(i)*0.05,
			Volume: 1_000_000,
		})
	}
	return s
}

func TestScreenPicksHotVolume(t *testing.T) {
	sh := NewShark(DefaultParams())
	got, err := sh.Screen(context.Background(), []*models.Series{
		hotSeries("HOT"), quietSeries("QUIET"),
	}, models.ScreenRequest{Limit: 10})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "HOT" {
		t.Fatalf("got %+v, want single HOT hit", got)
	}
	if got[0].VolumeRatio < DefaultParams().MinRatio {
		t.Fatalf("ratio %v below screen minimum", got[0].VolumeRatio)
	}
	if got[0].PriceChange7Dpct <= 0 || got[0].PriceChange30Dpct <= 0 {
		t.Fatalf("expected positive momentum, got %+v", got[0])
	}
}

func TestScreenRejectsShortHistory(t *testing.T) {
	s := hotSeries("SHORT")
	s.Bars = s.Bars[len(s.Bars)-40:]
	sh := NewShark(DefaultParams())
	got, err := sh.Screen(context.Background(), []*models.Series{s}, models.ScreenRequest{})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("short history passed the screen: %+v", got)
	}
}

func TestScreenRejectsCheapStock(t *testing.T) {
	s := hotSeries("CHEAP")
	for i := range s.Bars {
		s.Bars[i].Close /= 10
		s.Bars[i].Volume *= 100 // keep dollar volume above the floor
	}
	sh := NewShark(DefaultParams())
	got, err := sh.Screen(context.Background(), []*models.Series{s}, models.ScreenRequest{})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("sub-minimum price passed the screen: %+v", got)
	}
}

func TestScreenRejectsDecliningAfterSpike(t *testing.T) {
	s := hotSeries("FADE")
	n := len(s.Bars)
	// Volume spike four sessions back, then three straight down closes.
	s.Bars[n-4].Volume = 30_000_000
	s.Bars[n-3].Close = s.Bars[n-4].Close - 0.5
	s.Bars[n-2].Close = s.Bars[n-3].Close - 0.5
	s.Bars[n-1].Close = s.Bars[n-2].Close - 0.5
	// Allow the negative week so the rejection is attributable to the
	// spike-then-fade pattern, not the momentum filter.
	p := DefaultParams()
	p.AllowNegative = true
	sh := NewShark(p)
	got, err := sh.Screen(context.Background(), []*models.Series{s}, models.ScreenRequest{})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fading spike passed the screen: %+v", got)
	}
}
