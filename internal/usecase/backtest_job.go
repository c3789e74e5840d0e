package usecase

import (
	"context"
	"fmt"

	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
	"DarkScan/pkg/logger"
	"DarkScan/pkg/queue"
)

// BacktestJobType is the queue message type for asynchronous runs.
const BacktestJobType = "backtest.run"

// BacktestJobPayload narrows a grid-search request to what the API exposes.
// Empty fields fall back to the configured default grid.
type BacktestJobPayload struct {
	Family       string    `json:"family"`
	Symbols      []string  `json:"symbols,omitempty"`
	AnalysisDays []int     `json:"analysis_days,omitempty"`
	HoldingDays  []int     `json:"holding_days,omitempty"`
	Thresholds   []float64 `json:"thresholds,omitempty"`
	GroupBy      string    `json:"group_by,omitempty"`
}

// BacktestRunJob consumes queued run requests and executes them with the
// full pipeline. One job at a time per worker; the grid search parallelizes
// internally.
type BacktestRunJob struct {
	runner      *BacktestRunner
	defaultGrid models.Grid
	log         *logger.Logger
}

func NewBacktestRunJob(runner *BacktestRunner, defaultGrid models.Grid, log *logger.Logger) *BacktestRunJob {
	return &BacktestRunJob{runner: runner, defaultGrid: defaultGrid, log: log}
}

func (j *BacktestRunJob) Name() string { return "backtest_runner" }
func (j *BacktestRunJob) Type() string { return BacktestJobType }

func (j *BacktestRunJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[BacktestJobPayload](payload)
	if err != nil {
		return fmt.Errorf("backtest job: %w", err)
	}

	grid := j.buildGrid(p)
	report, err := j.runner.Run(ctx, grid, p.Symbols, drepo.NormalizeGroupBy(p.GroupBy))
	if err != nil {
		return fmt.Errorf("backtest job: %w", err)
	}

	j.log.Info("queued backtest finished",
		logger.String("run_id", report.RunID),
		logger.Int("configs", report.Configs),
		logger.Int("trades", report.TradeCount),
	)
	return nil
}

// buildGrid overlays the payload on the default grid. The thresholds list
// lands on whichever axis the requested family varies first.
func (j *BacktestRunJob) buildGrid(p *BacktestJobPayload) models.Grid {
	grid := j.defaultGrid
	if p.Family != "" {
		grid.Family = models.RuleFamily(p.Family)
	}
	if len(p.AnalysisDays) > 0 {
		grid.AnalysisDays = p.AnalysisDays
	}
	if len(p.HoldingDays) > 0 {
		grid.HoldingDays = p.HoldingDays
	}
	if len(p.Thresholds) > 0 {
		switch grid.Family {
		case models.FamilyVolumeRatio:
			grid.VolumeRatioThresholds = p.Thresholds
		default:
			grid.OffExchangeThresholds = p.Thresholds
		}
	}
	return grid
}
