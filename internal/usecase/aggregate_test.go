package usecase

import (
	"math"
	"math/rand"
	"testing"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
)

func makeTrades(cfg models.Configuration, symbol string, returns []float64, sig models.Signal) []*models.Trade {
	out := make([]*models.Trade, len(returns))
	for i, r := range returns {
		out[i] = &models.Trade{Symbol: symbol, Config: cfg, Signal: sig, ReturnPct: r}
	}
	return out
}

func TestAggregateStatistics(t *testing.T) {
	cfg := offExCfg(3, 5)
	trades := makeTrades(cfg, "AAA", []float64{2, -1, 3, -2, 4, 1, -1, 2, 3, -2}, models.SignalAccumulationStrong)
	agg := NewAggregator(5)

	results := agg.Aggregate(trades, drepo.GroupByConfig)
	if len(results) != 1 {
		t.Fatalf("got %d groups, want 1", len(results))
	}
	r := results[0]
	if r.TradeCount != 10 || r.SymbolCount != 1 {
		t.Fatalf("counts = (%d, %d), want (10, 1)", r.TradeCount, r.SymbolCount)
	}
	if r.HitRatePct != 60 {
		t.Fatalf("hit rate = %v, want 60", r.HitRatePct)
	}
	if math.Abs(r.MeanReturnPct-0.9) > 1e-9 {
		t.Fatalf("mean return = %v, want 0.9", r.MeanReturnPct)
	}
	want := 1.96 * math.Sqrt(0.6*0.4/10) * 100
	if math.Abs(r.ConfidencePct-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", r.ConfidencePct, want)
	}
	if r.LowSample {
		t.Fatal("10 trades with floor 5 must not be low-sample")
	}
	if !r.Overlapping {
		t.Fatal("sliding-window trades must be flagged overlapping")
	}
}

func TestAggregateInvariantToTradeOrder(t *testing.T) {
	cfgA := offExCfg(3, 5)
	cfgB := offExCfg(4, 7)
	trades := append(
		makeTrades(cfgA, "AAA", []float64{2, -1, 3, 0.5, -0.5, 1.5}, models.SignalAccumulationStrong),
		makeTrades(cfgB, "BBB", []float64{-2, 1, -3, 0.7, 1.1, -0.2}, models.SignalDistribution)...,
	)
	agg := NewAggregator(1)

	base := agg.Aggregate(trades, drepo.GroupByConfig)

	shuffled := make([]*models.Trade, len(trades))
	copy(shuffled, trades)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	again := agg.Aggregate(shuffled, drepo.GroupByConfig)

	if len(base) != len(again) {
		t.Fatalf("group counts differ: %d vs %d", len(base), len(again))
	}
	for i := range base {
		a, b := base[i], again[i]
		if a.Config.Key() != b.Config.Key() {
			t.Fatalf("rank order changed: %s vs %s", a.Config.Key(), b.Config.Key())
		}
		if a.HitRatePct != b.HitRatePct || a.MeanReturnPct != b.MeanReturnPct {
			t.Fatalf("statistics changed under shuffle: %+v vs %+v", a, b)
		}
	}
}

func TestConfidenceShrinksWithSampleSize(t *testing.T) {
	prev := math.Inf(1)
	for _, n := range []int{2, 10, 50, 200, 1000} {
		w := ConfidenceHalfWidth(60, n)
		if w >= prev {
			t.Fatalf("half-width did not shrink at n=%d: %v >= %v", n, w, prev)
		}
		prev = w
	}
	if ConfidenceHalfWidth(60, 1) != 0 || ConfidenceHalfWidth(60, 0) != 0 {
		t.Fatal("half-width must be 0 for n <= 1")
	}
}

func TestLowSampleGroupsRankLastAndFilterOut(t *testing.T) {
	cfgA := offExCfg(3, 5)
	cfgB := offExCfg(4, 7)
	// cfgB has a perfect hit rate but only 2 trades.
	trades := append(
		makeTrades(cfgA, "AAA", []float64{1, 1, 1, -1, 1, 1, 1, -1, 1, 1, 1, 1}, models.SignalAccumulationStrong),
		makeTrades(cfgB, "BBB", []float64{5, 5}, models.SignalAccumulationStrong)...,
	)
	agg := NewAggregator(10)

	results := agg.Aggregate(trades, drepo.GroupByConfig)
	if len(results) != 2 {
		t.Fatalf("got %d groups, want 2", len(results))
	}
	if results[0].Config.Key() != cfgA.Key() {
		t.Fatalf("low-sample group outranked a well-sampled one")
	}
	if !results[1].LowSample {
		t.Fatal("2-trade group must carry the low-sample flag")
	}

	kept := Filter(results)
	if len(kept) != 1 || kept[0].Config.Key() != cfgA.Key() {
		t.Fatalf("filter kept %d groups, want only the well-sampled one", len(kept))
	}
}

func TestGroupByConfigSignalSplitsGroups(t *testing.T) {
	cfg := offExCfg(3, 5)
	trades := append(
		makeTrades(cfg, "AAA", []float64{1, 2, 3}, models.SignalAccumulationStrong),
		makeTrades(cfg, "AAA", []float64{-1, -2}, models.SignalDistribution)...,
	)
	agg := NewAggregator(1)

	byConfig := agg.Aggregate(trades, drepo.GroupByConfig)
	if len(byConfig) != 1 {
		t.Fatalf("config grouping produced %d groups, want 1", len(byConfig))
	}
	bySignal := agg.Aggregate(trades, drepo.GroupByConfigSignal)
	if len(bySignal) != 2 {
		t.Fatalf("config+signal grouping produced %d groups, want 2", len(bySignal))
	}
	for _, r := range bySignal {
		if r.Signal == "" {
			t.Fatal("config+signal groups must carry the signal label")
		}
	}
}
