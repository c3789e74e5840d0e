package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
	"DarkScan/internal/domain/service"
	"DarkScan/pkg/logger"
)

// Scanner classifies the most recent window of every symbol and publishes
// the non-NONE signals. This is the live path; the backtest path replays
// history instead.
type Scanner struct {
	bars       drepo.BarSource
	analyzer   service.WindowAnalyzer
	classifier service.Classifier
	publisher  drepo.SignalPublisher
	metrics    drepo.Metrics
	log        *logger.Logger
}

func NewScanner(
	bars drepo.BarSource,
	analyzer service.WindowAnalyzer,
	classifier service.Classifier,
	publisher drepo.SignalPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		bars:       bars,
		analyzer:   analyzer,
		classifier: classifier,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
	}
}

// Scan runs the latest-window classification for req's universe under a
// single configuration built from the request. Symbols with too little
// history contribute nothing; malformed symbols are dropped and reported.
func (s *Scanner) Scan(ctx context.Context, req models.ScanRequest, cfg models.Configuration) ([]models.LiveSignal, []models.DroppedSymbol, error) {
	symbols := req.Symbols
	if len(symbols) == 0 {
		var err error
		symbols, err = s.bars.Symbols(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("scan: list symbols: %w", err)
		}
	}

	series, dropped, err := s.bars.LoadAll(ctx, symbols)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: load universe: %w", err)
	}
	for _, d := range dropped {
		s.metrics.RecordSymbolDropped(d.Reason)
	}

	var signals []models.LiveSignal
	for _, sr := range series {
		if sr.Len() < cfg.AnalysisDays {
			continue
		}
		start := sr.Len() - cfg.AnalysisDays
		m := s.analyzer.Compute(sr, start, cfg.AnalysisDays)
		sig := s.classifier.Classify(m, cfg)
		if sig == models.SignalNone {
			continue
		}
		last := sr.Bars[sr.Len()-1]
		signals = append(signals, models.LiveSignal{
			Symbol:  sr.Symbol,
			Signal:  sig,
			Price:   last.Close,
			AsOf:    last.Date,
			Metrics: m,
		})
	}

	// Strongest conviction first; ties break on symbol so output is stable.
	sort.Slice(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Signal.Strength() != b.Signal.Strength() {
			return a.Signal.Strength() > b.Signal.Strength()
		}
		return a.Symbol < b.Symbol
	})

	if s.publisher != nil && len(signals) > 0 {
		batch := make([]*models.LiveSignal, len(signals))
		for i := range signals {
			batch[i] = &signals[i]
		}
		if err := s.publisher.PublishBatch(ctx, batch); err != nil {
			// Publishing is best-effort; the caller still gets the scan.
			s.metrics.RecordError("publish")
			s.log.Warn("signal publish failed", logger.Error(err))
		}
	}

	s.log.Info("scan finished",
		logger.Int("symbols", len(series)),
		logger.Int("signals", len(signals)),
		logger.Int("dropped", len(dropped)),
		logger.String("as_of", time.Now().UTC().Format(time.RFC3339)),
	)
	return signals, dropped, nil
}
