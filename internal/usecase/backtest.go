package usecase

import (
	"context"
	"fmt"
	"time"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
	"DarkScan/pkg/logger"
)

// BacktestReport is the user-facing outcome of one full run.
type BacktestReport struct {
	RunID      string                 `json:"run_id"`
	Results    []*models.ConfigResult `json:"results"`
	TradeCount int                    `json:"trade_count"`
	Configs    int                    `json:"configs"`
	Dropped    []models.DroppedSymbol `json:"dropped,omitempty"`
	TradesCSV  string                 `json:"trades_csv,omitempty"`
	ResultsCSV string                 `json:"results_csv,omitempty"`
	Elapsed    time.Duration          `json:"elapsed_ms"`
}

// BacktestRunner wires the full pipeline: load universe, grid search,
// aggregate, persist. Store and writer are optional; a nil sink is skipped.
type BacktestRunner struct {
	bars    drepo.BarSource
	search  *GridSearch
	agg     *Aggregator
	store   drepo.ResultStore
	writer  drepo.ResultWriter
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewBacktestRunner(
	bars drepo.BarSource,
	search *GridSearch,
	agg *Aggregator,
	store drepo.ResultStore,
	writer drepo.ResultWriter,
	metrics drepo.Metrics,
	log *logger.Logger,
) *BacktestRunner {
	return &BacktestRunner{
		bars:    bars,
		search:  search,
		agg:     agg,
		store:   store,
		writer:  writer,
		metrics: metrics,
		log:     log,
	}
}

// Run executes one grid search end to end. Per-symbol and per-configuration
// failures never abort the run; only an unusable universe or an invalid grid
// does.
func (r *BacktestRunner) Run(ctx context.Context, grid models.Grid, symbols []string, groupBy drepo.GroupBy) (*BacktestReport, error) {
	if len(symbols) == 0 {
		var err error
		symbols, err = r.bars.Symbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("backtest: list symbols: %w", err)
		}
	}

	universe, dropped, err := r.bars.LoadAll(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("backtest: load universe: %w", err)
	}
	for _, d := range dropped {
		r.metrics.RecordSymbolDropped(d.Reason)
		r.log.Warn("symbol dropped",
			logger.String("symbol", d.Symbol),
			logger.String("reason", d.Reason),
		)
	}
	if len(universe) == 0 {
		return nil, fmt.Errorf("backtest: no usable symbols in universe of %d", len(symbols))
	}

	run, err := r.search.Run(ctx, universe, grid)
	if err != nil && (run == nil || len(run.Trades) == 0) {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	report := &BacktestReport{
		RunID:      run.RunID,
		Results:    r.agg.Aggregate(run.Trades, groupBy),
		TradeCount: len(run.Trades),
		Configs:    run.Configs,
		Dropped:    dropped,
		Elapsed:    run.Elapsed,
	}

	r.persist(ctx, run, report)
	return report, err
}

func (r *BacktestRunner) persist(ctx context.Context, run *RunResult, report *BacktestReport) {
	if r.store != nil {
		if err := r.store.StoreTrades(ctx, run.RunID, run.Trades); err != nil {
			r.metrics.RecordError("store_trades")
			r.log.Error("store trades failed", logger.Error(err), logger.String("run_id", run.RunID))
		}
		if err := r.store.StoreResults(ctx, run.RunID, report.Results); err != nil {
			r.metrics.RecordError("store_results")
			r.log.Error("store results failed", logger.Error(err), logger.String("run_id", run.RunID))
		}
	}
	if r.writer != nil {
		path, err := r.writer.WriteTrades(run.RunID, run.Trades)
		if err != nil {
			r.metrics.RecordError("write_trades")
			r.log.Error("write trades csv failed", logger.Error(err))
		} else {
			report.TradesCSV = path
		}
		path, err = r.writer.WriteResults(run.RunID, report.Results)
		if err != nil {
			r.metrics.RecordError("write_results")
			r.log.Error("write results csv failed", logger.Error(err))
		} else {
			report.ResultsCSV = path
		}
	}
}
