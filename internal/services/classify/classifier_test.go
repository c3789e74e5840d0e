package classify

import (
	"testing"

	"DarkScan/internal/domain/models"
)

func offExchangeCfg() models.Configuration {
	return models.Configuration{
		Family:                     models.FamilyOffExchange,
		AnalysisDays:               3,
		HoldingDays:                5,
		OffExchangeThresholdPct:    35,
		PriceStabilityThresholdPct: 1.0,
	}
}

func volumeRatioCfg() models.Configuration {
	return models.Configuration{
		Family:                  models.FamilyVolumeRatio,
		AnalysisDays:            3,
		HoldingDays:             5,
		VolumeRatioThreshold:    2.0,
		PriceChangeThresholdPct: 2.0,
	}
}

func TestAccumulationStrongOnRisingTrend(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	m := models.WindowMetrics{
		OffExchangePct:     45,
		PriceChangePct:     0.3,
		PriceVolatilityPct: 1,
		OffExchangeTrend:   5,
	}
	if got := c.Classify(m, offExchangeCfg()); got != models.SignalAccumulationStrong {
		t.Fatalf("got %s, want %s", got, models.SignalAccumulationStrong)
	}
	m.OffExchangeTrend = -2
	if got := c.Classify(m, offExchangeCfg()); got != models.SignalAccumulationModerate {
		t.Fatalf("got %s, want %s", got, models.SignalAccumulationModerate)
	}
}

func TestDistributionBoundedBelow(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	m := models.WindowMetrics{
		OffExchangePct:     45,
		PriceChangePct:     -1.5,
		PriceVolatilityPct: 1,
	}
	if got := c.Classify(m, offExchangeCfg()); got != models.SignalDistribution {
		t.Fatalf("got %s, want %s", got, models.SignalDistribution)
	}
	// Deeper than twice the stability band: not distribution.
	m.PriceChangePct = -2.5
	if got := c.Classify(m, offExchangeCfg()); got != models.SignalNone {
		t.Fatalf("got %s, want %s", got, models.SignalNone)
	}
}

func TestOffExchangeBelowThresholdIsNone(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	m := models.WindowMetrics{
		OffExchangePct:     20,
		PriceChangePct:     0.1,
		PriceVolatilityPct: 0.5,
		OffExchangeTrend:   10,
	}
	if got := c.Classify(m, offExchangeCfg()); got != models.SignalNone {
		t.Fatalf("got %s, want %s", got, models.SignalNone)
	}
}

func TestVolumeSpikeStrongTiers(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	cfg := volumeRatioCfg()

	buy := models.WindowMetrics{VolumeRatio: 2.5, PriceChangePct: 3, PriceVolatilityPct: 2}
	if got := c.Classify(buy, cfg); got != models.SignalBuyStrong {
		t.Fatalf("got %s, want %s", got, models.SignalBuyStrong)
	}

	sell := models.WindowMetrics{VolumeRatio: 2.5, PriceChangePct: -3, PriceVolatilityPct: 2}
	if got := c.Classify(sell, cfg); got != models.SignalSellStrong {
		t.Fatalf("got %s, want %s", got, models.SignalSellStrong)
	}
}

func TestVolumeSpikeModerateFollowsDrift(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	cfg := volumeRatioCfg()

	// Ratio above 1.2x threshold, price nearly flat, quiet tape.
	up := models.WindowMetrics{VolumeRatio: 2.5, PriceChangePct: 0.4, PriceVolatilityPct: 1}
	if got := c.Classify(up, cfg); got != models.SignalBuyModerate {
		t.Fatalf("got %s, want %s", got, models.SignalBuyModerate)
	}

	down := models.WindowMetrics{VolumeRatio: 2.5, PriceChangePct: -0.4, PriceVolatilityPct: 1}
	if got := c.Classify(down, cfg); got != models.SignalSellModerate {
		t.Fatalf("got %s, want %s", got, models.SignalSellModerate)
	}
}

func TestVolumeSpikeWeakTiers(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	cfg := volumeRatioCfg()

	// Spike at base threshold, half-threshold move, too loud for moderate.
	up := models.WindowMetrics{VolumeRatio: 2.1, PriceChangePct: 1.2, PriceVolatilityPct: 3.5}
	if got := c.Classify(up, cfg); got != models.SignalBuyWeak {
		t.Fatalf("got %s, want %s", got, models.SignalBuyWeak)
	}

	down := models.WindowMetrics{VolumeRatio: 2.1, PriceChangePct: -1.2, PriceVolatilityPct: 3.5}
	if got := c.Classify(down, cfg); got != models.SignalSellWeak {
		t.Fatalf("got %s, want %s", got, models.SignalSellWeak)
	}
}

func TestNoSpikeIsNone(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	m := models.WindowMetrics{VolumeRatio: 1.0, PriceChangePct: 5, PriceVolatilityPct: 1}
	if got := c.Classify(m, volumeRatioCfg()); got != models.SignalNone {
		t.Fatalf("got %s, want %s", got, models.SignalNone)
	}
}

func TestHighVolatilityVetoes(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	m := models.WindowMetrics{VolumeRatio: 3, PriceChangePct: 5, PriceVolatilityPct: 8}
	if got := c.Classify(m, volumeRatioCfg()); got != models.SignalNone {
		t.Fatalf("got %s, want %s", got, models.SignalNone)
	}
}
