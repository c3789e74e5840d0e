package classify

import (
	"math"

	"DarkScan/internal/domain/models"
)

// RuleSet holds the fixed ceilings and factors shared by every configuration.
// Grid thresholds vary per Configuration; these do not.
type RuleSet struct {
	// Volatility ceiling for accumulation/distribution detection. Quiet tape
	// is part of the accumulation hypothesis.
	AccumulationVolatilityCeilingPct float64
	// Volatility ceilings for the volume-spike tiers.
	StrongVolatilityCeilingPct   float64
	ModerateVolatilityCeilingPct float64
	// Moderate tier demands a hotter volume ratio than the base threshold.
	ModerateRatioFactor float64
	// Distribution requires price falling past the stability band but not
	// beyond this multiple of it; a deeper drop is a crash, not distribution.
	DistributionBandFactor float64
}

// DefaultRuleSet returns the production ceilings.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		AccumulationVolatilityCeilingPct: 3.0,
		StrongVolatilityCeilingPct:       4.0,
		ModerateVolatilityCeilingPct:     3.0,
		ModerateRatioFactor:              1.2,
		DistributionBandFactor:           2.0,
	}
}

// Classifier maps window metrics to a signal under one configuration.
// Pure and stateless: identical inputs always yield the same signal.
type Classifier struct {
	rules RuleSet
}

func NewClassifier(rules RuleSet) *Classifier { return &Classifier{rules: rules} }

// Classify evaluates the active family's rules in priority order and returns
// the first match, or NONE.
func (c *Classifier) Classify(m models.WindowMetrics, cfg models.Configuration) models.Signal {
	switch cfg.Family {
	case models.FamilyVolumeRatio:
		return c.classifyVolumeRatio(m, cfg)
	default:
		return c.classifyOffExchange(m, cfg)
	}
}

func (c *Classifier) classifyOffExchange(m models.WindowMetrics, cfg models.Configuration) models.Signal {
	if m.OffExchangePct < cfg.OffExchangeThresholdPct {
		return models.SignalNone
	}
	stability := cfg.PriceStabilityThresholdPct

	if math.Abs(m.PriceChangePct) <= stability &&
		m.PriceVolatilityPct <= c.rules.AccumulationVolatilityCeilingPct {
		if m.OffExchangeTrend > 0 {
			return models.SignalAccumulationStrong
		}
		return models.SignalAccumulationModerate
	}

	if m.PriceChangePct < -stability &&
		m.PriceChangePct >= -c.rules.DistributionBandFactor*stability {
		return models.SignalDistribution
	}

	return models.SignalNone
}

func (c *Classifier) classifyVolumeRatio(m models.WindowMetrics, cfg models.Configuration) models.Signal {
	ratio := cfg.VolumeRatioThreshold
	change := cfg.PriceChangeThresholdPct

	if m.VolumeRatio >= ratio && m.PriceVolatilityPct < c.rules.StrongVolatilityCeilingPct {
		if m.PriceChangePct > change {
			return models.SignalBuyStrong
		}
		if m.PriceChangePct < -change {
			return models.SignalSellStrong
		}
	}

	// Hotter spike on a quiet tape: the move has not happened yet, lean with
	// whatever drift the window shows.
	if m.VolumeRatio >= ratio*c.rules.ModerateRatioFactor &&
		math.Abs(m.PriceChangePct) < change/2 &&
		m.PriceVolatilityPct < c.rules.ModerateVolatilityCeilingPct {
		if m.PriceChangePct >= 0 {
			return models.SignalBuyModerate
		}
		return models.SignalSellModerate
	}

	if m.VolumeRatio >= ratio && m.PriceVolatilityPct < c.rules.StrongVolatilityCeilingPct {
		if m.PriceChangePct >= change/2 {
			return models.SignalBuyWeak
		}
		if m.PriceChangePct <= -change/2 {
			return models.SignalSellWeak
		}
	}

	return models.SignalNone
}
