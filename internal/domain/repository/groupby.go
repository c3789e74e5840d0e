package repository

// GroupBy selects the aggregation granularity for stored results.
type GroupBy string

const (
	GroupByConfig       GroupBy = "config"
	GroupByConfigSignal GroupBy = "config_signal"
)

// IsValidGroupBy returns true if g is a supported grouping.
func IsValidGroupBy(g GroupBy) bool {
	switch g {
	case GroupByConfig, GroupByConfigSignal:
		return true
	default:
		return false
	}
}

// DefaultGroupBy returns the default grouping.
func DefaultGroupBy() GroupBy { return GroupByConfig }

// NormalizeGroupBy converts a raw string to a valid grouping (or default).
func NormalizeGroupBy(s string) GroupBy {
	if s == "" {
		return DefaultGroupBy()
	}
	g := GroupBy(s)
	if IsValidGroupBy(g) {
		return g
	}
	return DefaultGroupBy()
}
