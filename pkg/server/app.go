package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DarkScan/internal/handler/api"
	"DarkScan/internal/usecase"
	pkgch "DarkScan/pkg/clickhouse"
	"DarkScan/pkg/config"
	xhttp "DarkScan/pkg/http"
	pkgkafka "DarkScan/pkg/kafka"
	applogger "DarkScan/pkg/logger"
	"DarkScan/pkg/queue"
)

// App encapsulates the API server lifecycle: the HTTP surface, the
// progress feed, the run queue consumer, and the infrastructure clients
// behind them.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    *api.BacktestHandler
	hub        *api.ProgressHub
	progress   chan usecase.Progress
	runQueue   *queue.RedisQueue
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The run queue,
// ClickHouse client and Kafka producer are optional; nil disables the
// corresponding surface.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler *api.BacktestHandler,
	hub *api.ProgressHub,
	progress chan usecase.Progress,
	runQueue *queue.RedisQueue,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		hub:      hub,
		progress: progress,
		runQueue: runQueue,
		chClient: chClient,
		producer: producer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.hub.RegisterRoutes(a.httpServer.Echo())
	go a.hub.Run(a.progress)

	if a.runQueue != nil {
		if err := a.runQueue.Start(); err != nil {
			a.logger.Error("run queue start error", applogger.Error(err))
			return err
		}
		a.logger.Info("run queue consumer started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("api server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting queued runs before the HTTP surface goes away so
	// in-flight jobs finish against a live store.
	if a.runQueue != nil {
		if err := a.runQueue.Stop(shutdownCtx); err != nil {
			a.logger.Warn("run queue stop error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	// No more progress producers once the queue and server are down.
	close(a.progress)

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
