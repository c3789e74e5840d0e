package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"DarkScan/internal/domain/models"
	domrepo "DarkScan/internal/domain/repository"
	pkgch "DarkScan/pkg/clickhouse"
	applogger "DarkScan/pkg/logger"
)

const (
	barsTable    = "darkscan.daily_bars"
	tradesTable  = "darkscan.backtest_trades"
	resultsTable = "darkscan.backtest_results"
)

// CHResultStore persists grid-search output in ClickHouse.
type CHResultStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHResultStore(ch *pkgch.Client, l *applogger.Logger) *CHResultStore {
	return &CHResultStore{db: ch.DB(), l: l}
}

func (s *CHResultStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE DATABASE IF NOT EXISTS darkscan`,
		`CREATE TABLE IF NOT EXISTS ` + barsTable + ` (
			symbol String,
			date Date,
			close Float64,
			volume Int64,
			off_exchange_volume Int64,
			short_volume Int64
		) ENGINE = MergeTree() ORDER BY (symbol, date)`,
		`CREATE TABLE IF NOT EXISTS ` + tradesTable + ` (
			run_id String,
			symbol String,
			config_key String,
			family String,
			analysis_days UInt16,
			holding_days UInt16,
			signal String,
			entry_date Date,
			entry_price Float64,
			exit_date Date,
			exit_price Float64,
			return_pct Float64
		) ENGINE = MergeTree() ORDER BY (run_id, config_key, symbol, entry_date)`,
		`CREATE TABLE IF NOT EXISTS ` + resultsTable + ` (
			run_id String,
			config_key String,
			family String,
			analysis_days UInt16,
			holding_days UInt16,
			off_exchange_threshold_pct Float64,
			price_stability_threshold_pct Float64,
			volume_ratio_threshold Float64,
			price_change_threshold_pct Float64,
			signal String,
			trade_count UInt32,
			symbol_count UInt32,
			hit_rate_pct Float64,
			mean_return_pct Float64,
			return_stddev_pct Float64,
			confidence_pct Float64,
			low_sample UInt8
		) ENGINE = MergeTree() ORDER BY (run_id, config_key, signal)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clickhouse init: %w", err)
		}
	}
	return nil
}

func (s *CHResultStore) StoreTrades(ctx context.Context, runID string, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	// Multi-row VALUES in chunks to keep round-trips down.
	const chunkSize = 2000
	for start := 0; start < len(trades); start += chunkSize {
		end := start + chunkSize
		if end > len(trades) {
			end = len(trades)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, t := range trades[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				runID, t.Symbol, t.Config.Key(), string(t.Config.Family),
				uint16(t.Config.AnalysisDays), uint16(t.Config.HoldingDays),
				string(t.Signal), t.EntryDate, t.EntryPrice, t.ExitDate, t.ExitPrice, t.ReturnPct,
			)
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (run_id, symbol, config_key, family, analysis_days, holding_days, signal, entry_date, entry_price, exit_date, exit_price, return_pct) VALUES %s",
			tradesTable, strings.Join(values, ","),
		)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store trades: %w", err)
		}
	}
	return nil
}

func (s *CHResultStore) StoreResults(ctx context.Context, runID string, results []*models.ConfigResult) error {
	if len(results) == 0 {
		return nil
	}
	values := make([]string, 0, len(results))
	args := make([]interface{}, 0, len(results)*17)
	for _, r := range results {
		lowSample := uint8(0)
		if r.LowSample {
			lowSample = 1
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			runID, r.Config.Key(), string(r.Config.Family),
			uint16(r.Config.AnalysisDays), uint16(r.Config.HoldingDays),
			r.Config.OffExchangeThresholdPct, r.Config.PriceStabilityThresholdPct,
			r.Config.VolumeRatioThreshold, r.Config.PriceChangeThresholdPct,
			string(r.Signal),
			uint32(r.TradeCount), uint32(r.SymbolCount),
			r.HitRatePct, r.MeanReturnPct, r.ReturnStddevPct, r.ConfidencePct, lowSample,
		)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (run_id, config_key, family, analysis_days, holding_days, off_exchange_threshold_pct, price_stability_threshold_pct, volume_ratio_threshold, price_change_threshold_pct, signal, trade_count, symbol_count, hit_rate_pct, mean_return_pct, return_stddev_pct, confidence_pct, low_sample) VALUES %s",
		resultsTable, strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	return nil
}

func (s *CHResultStore) QueryResults(ctx context.Context, runID string, groupBy domrepo.GroupBy, limit int) ([]*models.ConfigResult, error) {
	start := time.Now()
	signalCond := "signal = ''"
	if groupBy == domrepo.GroupByConfigSignal {
		signalCond = "signal != ''"
	}
	q := fmt.Sprintf(`
        SELECT config_key, family, analysis_days, holding_days,
               off_exchange_threshold_pct, price_stability_threshold_pct,
               volume_ratio_threshold, price_change_threshold_pct, signal,
               trade_count, symbol_count, hit_rate_pct, mean_return_pct,
               return_stddev_pct, confidence_pct, low_sample
        FROM %s
        WHERE run_id = ? AND %s
        ORDER BY low_sample ASC, hit_rate_pct DESC, trade_count DESC, mean_return_pct DESC
        LIMIT ?
    `, resultsTable, signalCond)
	rows, err := s.db.QueryContext(ctx, q, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*models.ConfigResult
	for rows.Next() {
		var (
			r          models.ConfigResult
			configKey  string
			family     string
			analysis   uint16
			holding    uint16
			signal     string
			tradeCount uint32
			symbols    uint32
			lowSample  uint8
		)
		if err := rows.Scan(&configKey, &family, &analysis, &holding,
			&r.Config.OffExchangeThresholdPct, &r.Config.PriceStabilityThresholdPct,
			&r.Config.VolumeRatioThreshold, &r.Config.PriceChangeThresholdPct, &signal,
			&tradeCount, &symbols, &r.HitRatePct, &r.MeanReturnPct,
			&r.ReturnStddevPct, &r.ConfidencePct, &lowSample); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Config.Family = models.RuleFamily(family)
		r.Config.AnalysisDays = int(analysis)
		r.Config.HoldingDays = int(holding)
		r.Signal = models.Signal(signal)
		r.TradeCount = int(tradeCount)
		r.SymbolCount = int(symbols)
		r.LowSample = lowSample != 0
		r.Overlapping = true
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse query_results ok",
			applogger.String("run_id", runID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHResultStore) Close() error {
	return nil // connection owned by pkg/clickhouse
}

// CHBarSource reads daily bars out of ClickHouse for deployments that ingest
// venue data centrally instead of shipping CSV files around.
type CHBarSource struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarSource(ch *pkgch.Client, l *applogger.Logger) *CHBarSource {
	return &CHBarSource{db: ch.DB(), l: l}
}

func (s *CHBarSource) Symbols(ctx context.Context) ([]string, error) {
	q := "SELECT DISTINCT symbol FROM " + barsTable + " ORDER BY symbol"
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *CHBarSource) Load(ctx context.Context, symbol string) (*models.Series, error) {
	q := `
        SELECT date, close, volume, off_exchange_volume, short_volume
        FROM ` + barsTable + `
        WHERE symbol = ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, err)
	}
	defer rows.Close()

	sr := &models.Series{Symbol: symbol}
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Close, &b.Volume, &b.OffExchangeVolume, &b.ShortVolume); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", symbol, err)
		}
		sr.Bars = append(sr.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows for %s: %w", symbol, err)
	}
	if err := sr.Validate(); err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *CHBarSource) LoadAll(ctx context.Context, symbols []string) ([]*models.Series, []models.DroppedSymbol, error) {
	var (
		out     []*models.Series
		dropped []models.DroppedSymbol
	)
	for _, sym := range symbols {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		sr, err := s.Load(ctx, sym)
		if err != nil {
			dropped = append(dropped, models.DroppedSymbol{Symbol: sym, Reason: err.Error()})
			if s.l != nil {
				s.l.Warn("symbol dropped", applogger.String("symbol", sym), applogger.Error(err))
			}
			continue
		}
		out = append(out, sr)
	}
	return out, dropped, nil
}
