package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"DarkScan/internal/di"
	"DarkScan/internal/domain/models"
	drepo "DarkScan/internal/domain/repository"
	internalrepo "DarkScan/internal/repository"
	"DarkScan/internal/usecase"
	"DarkScan/pkg/config"
	applogger "DarkScan/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	dataDir := flag.String("data-dir", "", "CSV bar directory (overrides config)")
	outDir := flag.String("out-dir", "", "artifact output directory (overrides config)")
	groupBy := flag.String("group-by", "config", "result grouping: config or config_signal")
	minTrades := flag.Int("min-trades", 0, "low-sample cutoff (overrides config)")
	workers := flag.Int("workers", 0, "worker pool size (0 = NumCPU)")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbol subset (default: whole universe)")
	top := flag.Int("top", 20, "rankings to print")
	scanOnly := flag.Bool("scan", false, "classify the latest window per symbol instead of backtesting")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
		cfg.Data.Source = "csv"
	}
	if *outDir != "" {
		cfg.Data.OutDir = *outDir
	}
	if *minTrades > 0 {
		cfg.Engine.MinTrades = *minTrades
	}
	if *workers > 0 {
		cfg.Engine.Workers = *workers
	}

	symbols := cfg.Data.Symbols
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		l.Error("clickhouse init failed", applogger.Error(err))
		os.Exit(1)
	}
	if chClient != nil {
		defer func() { _ = chClient.Close() }()
	}
	bars, err := di.ProvideBarSource(cfg, chClient, l)
	if err != nil {
		l.Error("bar source init failed", applogger.Error(err))
		os.Exit(1)
	}
	var writer drepo.ResultWriter
	if cfg.Data.OutDir != "" {
		writer = internalrepo.NewCSVResultWriter(cfg.Data.OutDir)
	}

	m := di.ProvideMetrics()
	analyzer := di.ProvideAnalyzer()
	classifier := di.ProvideClassifier()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grid := di.ProvideDefaultGrid(cfg)

	if *scanOnly {
		scanner := usecase.NewScanner(bars, analyzer, classifier, nil, m, l)
		signals, dropped, err := scanner.Scan(ctx, models.ScanRequest{Symbols: symbols}, di.ProvideScanConfig(grid))
		if err != nil {
			l.Error("scan failed", applogger.Error(err))
			os.Exit(1)
		}
		for _, d := range dropped {
			fmt.Printf("dropped %s: %s\n", d.Symbol, d.Reason)
		}
		fmt.Printf("%-8s %-22s %10s %12s %8s %8s\n", "symbol", "signal", "price", "as_of", "offex%", "vol_ratio")
		for _, s := range signals {
			fmt.Printf("%-8s %-22s %10.2f %12s %8.1f %8.2f\n",
				s.Symbol, s.Signal, s.Price, s.AsOf.Format("2006-01-02"),
				s.Metrics.OffExchangePct, s.Metrics.VolumeRatio)
		}
		return
	}

	store, err := di.ProvideResultStore(chClient, l)
	if err != nil {
		l.Error("result store init failed", applogger.Error(err))
		os.Exit(1)
	}

	sim := usecase.NewSimulator(analyzer, classifier, cfg.Engine.ScoreShortsInverted)
	search := usecase.NewGridSearch(sim, m, l, cfg.Engine.Workers)
	agg := usecase.NewAggregator(cfg.Engine.MinTrades)
	runner := usecase.NewBacktestRunner(bars, search, agg, store, writer, m, l)
	report, err := runner.Run(ctx, grid, symbols, drepo.NormalizeGroupBy(*groupBy))
	if err != nil {
		l.Error("backtest failed", applogger.Error(err))
		os.Exit(1)
	}

	fmt.Printf("run %s: %d configs, %d trades, %d symbols dropped, elapsed %s\n",
		report.RunID, report.Configs, report.TradeCount, len(report.Dropped), report.Elapsed.Round(time.Millisecond))
	if report.TradesCSV != "" {
		fmt.Printf("artifacts: %s, %s\n", report.TradesCSV, report.ResultsCSV)
	}

	n := *top
	if n > len(report.Results) {
		n = len(report.Results)
	}
	if n > 0 {
		fmt.Printf("\n%-4s %-40s %-22s %7s %7s %8s %8s\n",
			"#", "config", "signal", "trades", "hit%", "mean%", "ci±%")
		for i, r := range report.Results[:n] {
			fmt.Printf("%-4d %-40s %-22s %7d %7.1f %8.2f %8.2f\n",
				i+1, r.Config.Key(), r.Signal, r.TradeCount, r.HitRatePct, r.MeanReturnPct, r.ConfidencePct)
		}
	}
}
