package usecase

import (
	"context"
	"testing"
	"time"

	"DarkScan/internal/domain/models"
	"DarkScan/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordConfigDone(string)           {}
func (nopMetrics) RecordTrades(string, int)          {}
func (nopMetrics) RecordSymbolDropped(string)        {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordTaskLatency(string, float64) {}
func (nopMetrics) RecordRunDuration(time.Duration)   {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func saturatedSeries(symbol string, n int) *models.Series {
	s := &models.Series{Symbol: symbol}
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date:              barDate(i),
			Close:             50,
			Volume:            1_000_000,
			OffExchangeVolume: 450_000,
		})
	}
	return s
}

func testGrid() models.Grid {
	return models.Grid{
		Family:                   models.FamilyOffExchange,
		AnalysisDays:             []int{3, 4},
		HoldingDays:              []int{5},
		OffExchangeThresholds:    []float64{35, 40},
		PriceStabilityThresholds: []float64{1.0},
	}
}

func TestGridSearchMergesAllTasks(t *testing.T) {
	sim := newSimulator()
	g := NewGridSearch(sim, nopMetrics{}, testLogger(t), 4)

	universe := []*models.Series{
		saturatedSeries("AAA", 20),
		saturatedSeries("BBB", 20),
		saturatedSeries("CCC", 5), // too short for every configuration
	}
	res, err := g.Run(context.Background(), universe, testGrid())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Configs != 4 {
		t.Fatalf("configs = %d, want 4", res.Configs)
	}

	// Every (symbol, config) pair contributes independently; recompute
	// sequentially and compare totals.
	want := 0
	for _, cfg := range testGrid().Configurations() {
		for _, s := range universe {
			want += len(sim.Simulate(s, cfg))
		}
	}
	if len(res.Trades) != want {
		t.Fatalf("merged %d trades, want %d", len(res.Trades), want)
	}

	perSymbol := map[string]int{}
	for _, tr := range res.Trades {
		perSymbol[tr.Symbol]++
	}
	if perSymbol["CCC"] != 0 {
		t.Fatalf("short series contributed %d trades, want 0", perSymbol["CCC"])
	}
	if perSymbol["AAA"] == 0 || perSymbol["AAA"] != perSymbol["BBB"] {
		t.Fatalf("identical symbols diverged: %v", perSymbol)
	}
}

func TestGridSearchInvalidGrid(t *testing.T) {
	g := NewGridSearch(newSimulator(), nopMetrics{}, testLogger(t), 2)
	_, err := g.Run(context.Background(), []*models.Series{saturatedSeries("AAA", 20)}, models.Grid{})
	if err == nil {
		t.Fatal("empty grid must fail validation")
	}
}

func TestGridSearchCancelReturnsPartial(t *testing.T) {
	g := NewGridSearch(newSimulator(), nopMetrics{}, testLogger(t), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.Run(ctx, []*models.Series{saturatedSeries("AAA", 20)}, testGrid())
	if err == nil {
		t.Fatal("cancelled run must surface ctx.Err")
	}
	if res == nil {
		t.Fatal("cancelled run must still return the partial result")
	}
}

func TestGridSearchEmitsProgress(t *testing.T) {
	g := NewGridSearch(newSimulator(), nopMetrics{}, testLogger(t), 1)
	// Buffer every possible event so none are dropped.
	ch := make(chan Progress, 16)
	g.SetProgress(ch)

	universe := []*models.Series{saturatedSeries("AAA", 20)}
	res, err := g.Run(context.Background(), universe, testGrid())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	close(ch)

	seen := 0
	for p := range ch {
		seen++
		if p.RunID != res.RunID {
			t.Fatalf("progress run id %q, want %q", p.RunID, res.RunID)
		}
		if p.Total != 4 {
			t.Fatalf("progress total %d, want 4", p.Total)
		}
	}
	if seen != 4 {
		t.Fatalf("saw %d progress events, want 4", seen)
	}
}
