package models

// ScanRequest asks for latest-window signals over a symbol universe.
type ScanRequest struct {
	Symbols      []string `json:"symbols" validate:"omitempty,dive,required"`
	Family       string   `json:"family" default:"off_exchange" validate:"oneof=off_exchange volume_ratio"`
	AnalysisDays int      `json:"analysis_days" default:"10" validate:"gte=2,lte=90"`
}

// RankingsRequest selects stored grid-search results.
type RankingsRequest struct {
	RunID     string `query:"run_id" json:"run_id"`
	GroupBy   string `query:"group_by" json:"group_by" default:"config" validate:"oneof=config config_signal"`
	MinTrades int    `query:"min_trades" json:"min_trades" default:"10" validate:"gte=0"`
	Limit     int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

// ScreenRequest asks for the unusual-dollar-volume screen.
type ScreenRequest struct {
	MinPrice        float64 `query:"min_price" json:"min_price" default:"0.5" validate:"gte=0"`
	MinDollarVolume float64 `query:"min_dollar_volume" json:"min_dollar_volume" default:"1000000" validate:"gte=0"`
	MinRatio        float64 `query:"min_ratio" json:"min_ratio" default:"3" validate:"gte=1"`
	Limit           int     `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

// BacktestRequest enqueues a grid-search run.
type BacktestRequest struct {
	Family       string    `json:"family" default:"off_exchange" validate:"oneof=off_exchange volume_ratio"`
	Symbols      []string  `json:"symbols" validate:"omitempty,dive,required"`
	AnalysisDays []int     `json:"analysis_days" validate:"omitempty,dive,gte=2,lte=90"`
	HoldingDays  []int     `json:"holding_days" validate:"omitempty,dive,gte=1,lte=90"`
	Thresholds   []float64 `json:"thresholds" validate:"omitempty,dive,gt=0"`
}
