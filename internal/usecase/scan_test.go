package usecase

import (
	"context"
	"testing"

	"DarkScan/internal/domain/models"
	"DarkScan/internal/services/classify"
	"DarkScan/internal/services/window"
)

type memBarSource struct {
	series  map[string]*models.Series
	dropped []models.DroppedSymbol
}

func (m *memBarSource) Symbols(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(m.series))
	for s := range m.series {
		out = append(out, s)
	}
	return out, nil
}

func (m *memBarSource) Load(ctx context.Context, symbol string) (*models.Series, error) {
	return m.series[symbol], nil
}

func (m *memBarSource) LoadAll(ctx context.Context, symbols []string) ([]*models.Series, []models.DroppedSymbol, error) {
	var out []*models.Series
	for _, s := range symbols {
		if sr, ok := m.series[s]; ok {
			out = append(out, sr)
		}
	}
	return out, m.dropped, nil
}

type memPublisher struct {
	published []*models.LiveSignal
}

func (p *memPublisher) Publish(ctx context.Context, s *models.LiveSignal) error {
	p.published = append(p.published, s)
	return nil
}

func (p *memPublisher) PublishBatch(ctx context.Context, signals []*models.LiveSignal) error {
	p.published = append(p.published, signals...)
	return nil
}

func (p *memPublisher) Close() error { return nil }

func TestScanClassifiesLatestWindowAndPublishes(t *testing.T) {
	quiet := flatSeries(20) // 10% off-exchange share, no signal
	quiet.Symbol = "QUIET"
	bars := &memBarSource{series: map[string]*models.Series{
		"HOT":   saturatedSeries("HOT", 20), // 45% off-exchange, flat price
		"QUIET": quiet,
		"THIN":  saturatedSeries("THIN", 2), // shorter than the window
	}}
	pub := &memPublisher{}
	sc := NewScanner(bars, window.NewAnalyzer(), classify.NewClassifier(classify.DefaultRuleSet()), pub, nopMetrics{}, testLogger(t))

	cfg := offExCfg(3, 5)
	signals, dropped, err := sc.Scan(context.Background(), models.ScanRequest{
		Symbols: []string{"HOT", "QUIET", "THIN"},
	}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", dropped)
	}
	if len(signals) != 1 || signals[0].Symbol != "HOT" {
		t.Fatalf("got %+v, want a single HOT signal", signals)
	}
	if signals[0].Signal == models.SignalNone {
		t.Fatal("published signal must not be NONE")
	}
	if !signals[0].AsOf.Equal(barDate(19)) {
		t.Fatalf("as-of %v, want last bar date %v", signals[0].AsOf, barDate(19))
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d signals, want 1", len(pub.published))
	}
}
