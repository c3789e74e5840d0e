package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"DarkScan/internal/domain/models"
)

// CSVResultWriter renders run artifacts as CSV files under a base directory,
// one subdirectory per run.
type CSVResultWriter struct {
	dir string
}

func NewCSVResultWriter(dir string) *CSVResultWriter {
	return &CSVResultWriter{dir: dir}
}

func (w *CSVResultWriter) WriteTrades(runID string, trades []*models.Trade) (string, error) {
	path, f, err := w.create(runID, "trades.csv")
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"symbol", "config", "family", "analysis_days", "holding_days", "signal",
		"entry_date", "entry_price", "exit_date", "exit_price", "return_pct",
	}
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		row := []string{
			t.Symbol,
			t.Config.Key(),
			string(t.Config.Family),
			strconv.Itoa(t.Config.AnalysisDays),
			strconv.Itoa(t.Config.HoldingDays),
			string(t.Signal),
			t.EntryDate.Format("2006-01-02"),
			formatFloat(t.EntryPrice),
			t.ExitDate.Format("2006-01-02"),
			formatFloat(t.ExitPrice),
			formatFloat(t.ReturnPct),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write trade row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush trades csv: %w", err)
	}
	return path, nil
}

func (w *CSVResultWriter) WriteResults(runID string, results []*models.ConfigResult) (string, error) {
	path, f, err := w.create(runID, "rankings.csv")
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"rank", "config", "signal", "trade_count", "symbol_count",
		"hit_rate_pct", "mean_return_pct", "return_stddev_pct", "confidence_pct", "low_sample",
	}
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.Config.Key(),
			string(r.Signal),
			strconv.Itoa(r.TradeCount),
			strconv.Itoa(r.SymbolCount),
			formatFloat(r.HitRatePct),
			formatFloat(r.MeanReturnPct),
			formatFloat(r.ReturnStddevPct),
			formatFloat(r.ConfidencePct),
			strconv.FormatBool(r.LowSample),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write result row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush rankings csv: %w", err)
	}
	return path, nil
}

func (w *CSVResultWriter) create(runID, name string) (string, *os.File, error) {
	dir := filepath.Join(w.dir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create run dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create %s: %w", path, err)
	}
	return path, f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
