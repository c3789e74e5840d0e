package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
	"DarkScan/pkg/logger"
)

// Progress is one grid-search progress event, emitted after each
// (symbol, configuration) task completes.
type Progress struct {
	RunID     string `json:"run_id"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	ConfigKey string `json:"config_key"`
	Symbol    string `json:"symbol"`
	Trades    int    `json:"trades"`
}

// RunResult is the raw outcome of one grid search: the merged trade pool
// plus everything needed to explain what did not contribute.
type RunResult struct {
	RunID   string
	Trades  []*models.Trade
	Dropped []models.DroppedSymbol
	Configs int
	Elapsed time.Duration
}

// GridSearch fans (symbol, configuration) tasks out over a worker pool and
// merges the trades. Tasks share nothing; the merge is plain append, so the
// final pool is independent of completion order.
type GridSearch struct {
	sim     *Simulator
	metrics drepo.Metrics
	log     *logger.Logger
	workers int
	// progress receives one event per finished task when non-nil. Sends never
	// block; a slow listener just misses events.
	progress chan<- Progress
}

func NewGridSearch(sim *Simulator, metrics drepo.Metrics, log *logger.Logger, workers int) *GridSearch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &GridSearch{sim: sim, metrics: metrics, log: log, workers: workers}
}

// SetProgress attaches a progress sink. Call before Run.
func (g *GridSearch) SetProgress(ch chan<- Progress) { g.progress = ch }

// NewRunID derives a run identifier from the wall clock.
func NewRunID(now time.Time) string {
	return "run_" + now.UTC().Format("20060102_150405")
}

type task struct {
	series *models.Series
	cfg    models.Configuration
}

type taskResult struct {
	trades []models.Trade
	cfg    models.Configuration
	symbol string
}

// Run enumerates the grid over the universe and simulates every pair.
// Cancelling ctx stops scheduling new tasks; trades from already-finished
// tasks are returned as a valid partial result alongside ctx.Err().
func (g *GridSearch) Run(ctx context.Context, universe []*models.Series, grid models.Grid) (*RunResult, error) {
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("grid search: %w", err)
	}
	configs := grid.Configurations()
	runID := NewRunID(time.Now())
	start := time.Now()
	total := len(configs) * len(universe)

	g.log.Info("grid search started",
		logger.String("run_id", runID),
		logger.Int("configs", len(configs)),
		logger.Int("symbols", len(universe)),
		logger.Int("workers", g.workers),
	)

	tasks := make(chan task)
	results := make(chan taskResult)

	var wg sync.WaitGroup
	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- g.runTask(t)
			}
		}()
	}
	go func() { wg.Wait(); close(results) }()

	go func() {
		defer close(tasks)
		for _, cfg := range configs {
			for _, s := range universe {
				select {
				case tasks <- task{series: s, cfg: cfg}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	res := &RunResult{RunID: runID, Configs: len(configs)}
	done := 0
	for r := range results {
		done++
		for i := range r.trades {
			res.Trades = append(res.Trades, &r.trades[i])
		}
		g.metrics.RecordTrades(string(r.cfg.Family), len(r.trades))
		g.emitProgress(Progress{
			RunID:     runID,
			Done:      done,
			Total:     total,
			ConfigKey: r.cfg.Key(),
			Symbol:    r.symbol,
			Trades:    len(r.trades),
		})
	}

	res.Elapsed = time.Since(start)
	g.metrics.RecordRunDuration(res.Elapsed)
	g.log.Info("grid search finished",
		logger.String("run_id", runID),
		logger.Int("tasks", done),
		logger.Int("trades", len(res.Trades)),
		logger.Duration("elapsed", res.Elapsed),
	)

	if err := ctx.Err(); err != nil {
		// Completed configurations are self-contained, so the partial pool
		// is still valid.
		return res, err
	}
	return res, nil
}

// runTask isolates failures per (symbol, configuration): a panicking task
// loses only its own trades.
func (g *GridSearch) runTask(t task) (out taskResult) {
	out.cfg = t.cfg
	out.symbol = t.series.Symbol
	defer func() {
		if r := recover(); r != nil {
			g.metrics.RecordError("task_panic")
			g.log.Error("simulation panicked",
				logger.String("symbol", t.series.Symbol),
				logger.String("config", t.cfg.Key()),
				logger.Any("panic", r),
			)
			out.trades = nil
		}
	}()
	start := time.Now()
	out.trades = g.sim.Simulate(t.series, t.cfg)
	g.metrics.RecordTaskLatency("simulate", time.Since(start).Seconds())
	g.metrics.RecordConfigDone(string(t.cfg.Family))
	return out
}

func (g *GridSearch) emitProgress(p Progress) {
	if g.progress == nil {
		return
	}
	select {
	case g.progress <- p:
	default:
	}
}
