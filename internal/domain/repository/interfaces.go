package repository

import (
	"context"
	"time"

	"DarkScan/internal/domain/models"
)

// BarSource provides read-only access to daily bar series for a universe of
// symbols. Implementations validate each series and report, not fail, on
// malformed symbols.
type BarSource interface {
	Symbols(ctx context.Context) ([]string, error)
	Load(ctx context.Context, symbol string) (*models.Series, error)
	LoadAll(ctx context.Context, symbols []string) ([]*models.Series, []models.DroppedSymbol, error)
}

// ResultStore persists grid-search output keyed by run id.
type ResultStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreTrades(ctx context.Context, runID string, trades []*models.Trade) error
	StoreResults(ctx context.Context, runID string, results []*models.ConfigResult) error
	QueryResults(ctx context.Context, runID string, groupBy GroupBy, limit int) ([]*models.ConfigResult, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// SignalPublisher emits latest-window signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.LiveSignal) error
	PublishBatch(ctx context.Context, signals []*models.LiveSignal) error
	Close() error
}

// ResultWriter renders a finished run to a human-readable artifact (CSV).
type ResultWriter interface {
	WriteTrades(runID string, trades []*models.Trade) (string, error)
	WriteResults(runID string, results []*models.ConfigResult) (string, error)
}

// Metrics is the engine-facing metrics surface. The prometheus recorder
// implements it; tests pass a no-op.
type Metrics interface {
	RecordConfigDone(family string)
	RecordTrades(family string, n int)
	RecordSymbolDropped(reason string)
	RecordError(kind string)
	RecordTaskLatency(op string, seconds float64)
	RecordRunDuration(d time.Duration)
}
