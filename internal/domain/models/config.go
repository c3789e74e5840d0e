package models

import "fmt"

// RuleFamily selects which threshold rules the classifier evaluates.
// The two families reflect the two independent heuristics in production use:
// dark-pool share analysis and plain volume-spike analysis.
type RuleFamily string

const (
	FamilyOffExchange RuleFamily = "off_exchange"
	FamilyVolumeRatio RuleFamily = "volume_ratio"
)

// Configuration is one immutable point in the parameter grid. Only the
// thresholds of the active family are meaningful; the others stay zero.
type Configuration struct {
	Family       RuleFamily `json:"family"`
	AnalysisDays int        `json:"analysis_days"`
	HoldingDays  int        `json:"holding_days"`

	// off_exchange family
	OffExchangeThresholdPct    float64 `json:"off_exchange_threshold_pct,omitempty"`
	PriceStabilityThresholdPct float64 `json:"price_stability_threshold_pct,omitempty"`

	// volume_ratio family
	VolumeRatioThreshold    float64 `json:"volume_ratio_threshold,omitempty"`
	PriceChangeThresholdPct float64 `json:"price_change_threshold_pct,omitempty"`
}

// Key renders a stable identifier used for grouping and display labels.
func (c Configuration) Key() string {
	switch c.Family {
	case FamilyVolumeRatio:
		return fmt.Sprintf("%s/a%d/h%d/vr%.2f/pc%.2f",
			c.Family, c.AnalysisDays, c.HoldingDays, c.VolumeRatioThreshold, c.PriceChangeThresholdPct)
	default:
		return fmt.Sprintf("%s/a%d/h%d/oe%.1f/ps%.2f",
			c.Family, c.AnalysisDays, c.HoldingDays, c.OffExchangeThresholdPct, c.PriceStabilityThresholdPct)
	}
}

// MinBars returns the shortest series that can produce a trade under c.
func (c Configuration) MinBars() int { return c.AnalysisDays + c.HoldingDays }

// Grid holds the parameter value lists whose Cartesian product defines the
// search space. Only the lists of the active family are combined.
type Grid struct {
	Family                   RuleFamily
	AnalysisDays             []int
	HoldingDays              []int
	OffExchangeThresholds    []float64
	PriceStabilityThresholds []float64
	VolumeRatioThresholds    []float64
	PriceChangeThresholds    []float64
}

// Configurations expands the grid. Enumeration order is deterministic but
// carries no meaning; configurations are independent.
func (g Grid) Configurations() []Configuration {
	var out []Configuration
	for _, a := range g.AnalysisDays {
		for _, h := range g.HoldingDays {
			switch g.Family {
			case FamilyVolumeRatio:
				for _, vr := range g.VolumeRatioThresholds {
					for _, pc := range g.PriceChangeThresholds {
						out = append(out, Configuration{
							Family:                  FamilyVolumeRatio,
							AnalysisDays:            a,
							HoldingDays:             h,
							VolumeRatioThreshold:    vr,
							PriceChangeThresholdPct: pc,
						})
					}
				}
			default:
				for _, oe := range g.OffExchangeThresholds {
					for _, ps := range g.PriceStabilityThresholds {
						out = append(out, Configuration{
							Family:                     FamilyOffExchange,
							AnalysisDays:               a,
							HoldingDays:                h,
							OffExchangeThresholdPct:    oe,
							PriceStabilityThresholdPct: ps,
						})
					}
				}
			}
		}
	}
	return out
}

// Validate rejects grids that cannot produce a single valid configuration.
func (g Grid) Validate() error {
	if len(g.AnalysisDays) == 0 {
		return fmt.Errorf("grid: analysis_days list is empty")
	}
	if len(g.HoldingDays) == 0 {
		return fmt.Errorf("grid: holding_days list is empty")
	}
	for _, a := range g.AnalysisDays {
		if a < 1 {
			return fmt.Errorf("grid: analysis_days must be >= 1, got %d", a)
		}
	}
	for _, h := range g.HoldingDays {
		if h < 1 {
			return fmt.Errorf("grid: holding_days must be >= 1, got %d", h)
		}
	}
	switch g.Family {
	case FamilyOffExchange:
		if len(g.OffExchangeThresholds) == 0 || len(g.PriceStabilityThresholds) == 0 {
			return fmt.Errorf("grid: off_exchange family requires off_exchange and price_stability threshold lists")
		}
	case FamilyVolumeRatio:
		if len(g.VolumeRatioThresholds) == 0 || len(g.PriceChangeThresholds) == 0 {
			return fmt.Errorf("grid: volume_ratio family requires volume_ratio and price_change threshold lists")
		}
	default:
		return fmt.Errorf("grid: unknown rule family %q", g.Family)
	}
	return nil
}
