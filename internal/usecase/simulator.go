package usecase

import (
	"DarkScan/internal/domain/models"
	"DarkScan/internal/domain/service"
)

// Simulator replays one configuration over one symbol's bar series and
// produces the trades its signals would have opened.
type Simulator struct {
	analyzer   service.WindowAnalyzer
	classifier service.Classifier
	// scoreShortsInverted negates the forward return of down-expecting
	// signals so every trade's ReturnPct reads "positive means the call was
	// right". Off, ReturnPct is the raw long return for all trades.
	scoreShortsInverted bool
}

func NewSimulator(analyzer service.WindowAnalyzer, classifier service.Classifier, scoreShortsInverted bool) *Simulator {
	return &Simulator{
		analyzer:            analyzer,
		classifier:          classifier,
		scoreShortsInverted: scoreShortsInverted,
	}
}

// Simulate slides the analysis window one day at a time over the series.
// Consecutive trades deliberately overlap; the larger sample is worth the
// autocorrelation, which the aggregate flags.
//
// A series too short for cfg yields nil, never an error. A degenerate start
// index (zero entry price) skips that index only.
func (s *Simulator) Simulate(series *models.Series, cfg models.Configuration) []models.Trade {
	n := series.Len()
	if n < cfg.MinBars() {
		return nil
	}

	var trades []models.Trade
	for start := 0; start <= n-cfg.AnalysisDays-cfg.HoldingDays; start++ {
		m := s.analyzer.Compute(series, start, cfg.AnalysisDays)
		sig := s.classifier.Classify(m, cfg)
		if sig == models.SignalNone {
			continue
		}

		entryIdx := start + cfg.AnalysisDays - 1
		exitIdx := entryIdx + cfg.HoldingDays
		if exitIdx >= n {
			continue
		}
		entry := series.Bars[entryIdx]
		exit := series.Bars[exitIdx]
		if entry.Close <= 0 {
			continue
		}

		ret := (exit.Close - entry.Close) / entry.Close * 100
		if s.scoreShortsInverted && sig.Direction() < 0 {
			ret = -ret
		}

		trades = append(trades, models.Trade{
			Symbol:     series.Symbol,
			Config:     cfg,
			Signal:     sig,
			EntryDate:  entry.Date,
			EntryPrice: entry.Close,
			ExitDate:   exit.Date,
			ExitPrice:  exit.Close,
			ReturnPct:  ret,
			Metrics:    m,
		})
	}
	return trades
}
