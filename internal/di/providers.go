package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"DarkScan/internal/domain/models"
	"DarkScan/internal/domain/repository"
	"DarkScan/internal/domain/service"
	"DarkScan/internal/handler/api"
	internalrepo "DarkScan/internal/repository"
	"DarkScan/internal/services/classify"
	"DarkScan/internal/services/screen"
	"DarkScan/internal/services/window"
	"DarkScan/internal/usecase"
	"DarkScan/pkg/cache"
	pkgch "DarkScan/pkg/clickhouse"
	"DarkScan/pkg/config"
	pkgkafka "DarkScan/pkg/kafka"
	applogger "DarkScan/pkg/logger"
	"DarkScan/pkg/metrics"
	"DarkScan/pkg/queue"
	"DarkScan/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger. Production defaults to JSON,
// everything else to the console; config overrides both knobs.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
		if cfg.Environment == "production" {
			format = "json"
		}
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher. A nil producer
// leaves scans unpublished.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRedisClient creates a Redis client for the run queue, or nil when
// Redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCache creates the response cache: Redis when enabled, in-process
// memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideBarSource picks the bar source by configuration.
func ProvideBarSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.BarSource, error) {
	switch cfg.Data.Source {
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("bar source: clickhouse selected but not enabled")
		}
		return internalrepo.NewCHBarSource(ch, l), nil
	default:
		return internalrepo.NewCSVBarSource(cfg.Data.Dir, l), nil
	}
}

// ProvideResultStore creates the ClickHouse result store and initializes its
// schema. Nil client means no store; runs still write CSV artifacts.
func ProvideResultStore(ch *pkgch.Client, l *applogger.Logger) (repository.ResultStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHResultStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store schema: %w", err)
	}
	return store, nil
}

// ProvideResultWriter creates the CSV artifact writer, or nil when no output
// directory is configured.
func ProvideResultWriter(cfg *config.Config) repository.ResultWriter {
	if cfg.Data.OutDir == "" {
		return nil
	}
	return internalrepo.NewCSVResultWriter(cfg.Data.OutDir)
}

// ProvideAnalyzer creates the window metrics analyzer.
func ProvideAnalyzer() service.WindowAnalyzer {
	return window.NewAnalyzer()
}

// ProvideClassifier creates the signal classifier with production rules.
func ProvideClassifier() service.Classifier {
	return classify.NewClassifier(classify.DefaultRuleSet())
}

// ProvideScreener creates the dollar-volume screener, with config overrides
// on top of the production defaults.
func ProvideScreener(cfg *config.Config) service.Screener {
	params := screen.DefaultParams()
	if cfg.Screen.MinDollarVolume > 0 {
		params.MinDollarVolume90D = cfg.Screen.MinDollarVolume
	}
	if cfg.Screen.MinRatio > 0 {
		params.MinRatio = cfg.Screen.MinRatio
	}
	if cfg.Screen.MinPrice > 0 {
		params.MinCurrentPrice = cfg.Screen.MinPrice
	}
	return screen.NewShark(params)
}

// ProvideSimulator creates the per-configuration trade simulator.
func ProvideSimulator(analyzer service.WindowAnalyzer, classifier service.Classifier, cfg *config.Config) *usecase.Simulator {
	return usecase.NewSimulator(analyzer, classifier, cfg.Engine.ScoreShortsInverted)
}

// ProvideProgressChannel creates the progress feed shared by the grid search
// and the websocket hub.
func ProvideProgressChannel() chan usecase.Progress {
	return make(chan usecase.Progress, 256)
}

// ProvideGridSearch creates the worker-pool grid search wired to the
// progress feed.
func ProvideGridSearch(
	sim *usecase.Simulator,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
	progress chan usecase.Progress,
) *usecase.GridSearch {
	gs := usecase.NewGridSearch(sim, m, l, cfg.Engine.Workers)
	gs.SetProgress(progress)
	return gs
}

// ProvideAggregator creates the result aggregator.
func ProvideAggregator(cfg *config.Config) *usecase.Aggregator {
	return usecase.NewAggregator(cfg.Engine.MinTrades)
}

// ProvideBacktestRunner creates the end-to-end run pipeline.
func ProvideBacktestRunner(
	bars repository.BarSource,
	search *usecase.GridSearch,
	agg *usecase.Aggregator,
	store repository.ResultStore,
	writer repository.ResultWriter,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BacktestRunner {
	return usecase.NewBacktestRunner(bars, search, agg, store, writer, m, l)
}

// ProvideScanner creates the live scan use case.
func ProvideScanner(
	bars repository.BarSource,
	analyzer service.WindowAnalyzer,
	classifier service.Classifier,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Scanner {
	return usecase.NewScanner(bars, analyzer, classifier, publisher, m, l)
}

// ProvideDefaultGrid builds the configured default grid.
func ProvideDefaultGrid(cfg *config.Config) models.Grid {
	return models.Grid{
		Family:                   models.RuleFamily(cfg.Grid.Family),
		AnalysisDays:             cfg.Grid.AnalysisDays,
		HoldingDays:              cfg.Grid.HoldingDays,
		OffExchangeThresholds:    cfg.Grid.OffExchangeThresholds,
		PriceStabilityThresholds: cfg.Grid.PriceStabilityThresholds,
		VolumeRatioThresholds:    cfg.Grid.VolumeRatioThresholds,
		PriceChangeThresholds:    cfg.Grid.PriceChangeThresholds,
	}
}

// ProvideScanConfig derives the live-scan configuration from the head of
// each grid axis.
func ProvideScanConfig(grid models.Grid) models.Configuration {
	c := models.Configuration{
		Family:       grid.Family,
		AnalysisDays: firstInt(grid.AnalysisDays, 10),
		HoldingDays:  firstInt(grid.HoldingDays, 5),
	}
	c.OffExchangeThresholdPct = firstFloat(grid.OffExchangeThresholds, 40)
	c.PriceStabilityThresholdPct = firstFloat(grid.PriceStabilityThresholds, 2)
	c.VolumeRatioThreshold = firstFloat(grid.VolumeRatioThresholds, 2)
	c.PriceChangeThresholdPct = firstFloat(grid.PriceChangeThresholds, 3)
	return c
}

func firstInt(xs []int, fallback int) int {
	if len(xs) > 0 {
		return xs[0]
	}
	return fallback
}

func firstFloat(xs []float64, fallback float64) float64 {
	if len(xs) > 0 {
		return xs[0]
	}
	return fallback
}

// ProvideBacktestRunJob creates the queued run job.
func ProvideBacktestRunJob(runner *usecase.BacktestRunner, grid models.Grid, l *applogger.Logger) *usecase.BacktestRunJob {
	return usecase.NewBacktestRunJob(runner, grid, l)
}

// ProvideRunQueue creates the Redis-backed run queue in producer-consumer
// mode, or nil when Redis is disabled.
func ProvideRunQueue(l *applogger.Logger, rdb *redis.Client, job *usecase.BacktestRunJob) *queue.RedisQueue {
	if rdb == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 2,
		RetryDelay: 30 * time.Second,
	}, rdb, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideHandler creates the API handler with its optional surfaces wired.
func ProvideHandler(
	l *applogger.Logger,
	scanner *usecase.Scanner,
	screener service.Screener,
	bars repository.BarSource,
	scanCfg models.Configuration,
	store repository.ResultStore,
	runQueue *queue.RedisQueue,
	cacheSvc cache.Service,
	cfg *config.Config,
) *api.BacktestHandler {
	h := api.NewBacktestHandler(l, scanner, screener, bars, scanCfg)
	if store != nil {
		h.SetStore(store)
	}
	if runQueue != nil {
		h.SetQueue(runQueue)
	}
	if cacheSvc != nil {
		h.SetCache(cacheSvc)
	}
	h.SetCacheTTL(cfg.Cache.TTL.Scan, cfg.Cache.TTL.Rankings, cfg.Cache.TTL.Screen)
	return h
}

// ProvideProgressHub creates the websocket progress hub.
func ProvideProgressHub(l *applogger.Logger) *api.ProgressHub {
	return api.NewProgressHub(l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.BacktestHandler,
	hub *api.ProgressHub,
	progress chan usecase.Progress,
	runQueue *queue.RedisQueue,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, l, handler, hub, progress, runQueue, chClient, producer)
}
