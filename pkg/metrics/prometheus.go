package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	configsDone    *prometheus.CounterVec
	tradesTotal    *prometheus.CounterVec
	symbolsDropped *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	taskLatency    *prometheus.HistogramVec
	runDuration    prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		configsDone: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkscan_configs_done_total",
				Help: "Completed (symbol, configuration) simulation tasks",
			},
			[]string{"family"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkscan_trades_total",
				Help: "Simulated trades produced",
			},
			[]string{"family"},
		),
		symbolsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkscan_symbols_dropped_total",
				Help: "Symbols dropped from the universe, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		taskLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "darkscan_task_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "darkscan_run_duration_seconds",
				Help:    "Wall-clock duration of full grid-search runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			},
		),
	}
}

// RecordConfigDone counts a finished simulation task.
func (r *Recorder) RecordConfigDone(family string) {
	r.configsDone.WithLabelValues(family).Inc()
}

// RecordTrades counts trades produced by one task.
func (r *Recorder) RecordTrades(family string, n int) {
	if n > 0 {
		r.tradesTotal.WithLabelValues(family).Add(float64(n))
	}
}

// RecordSymbolDropped counts a symbol excluded from the universe.
func (r *Recorder) RecordSymbolDropped(reason string) {
	r.symbolsDropped.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTaskLatency records operation latency in seconds.
func (r *Recorder) RecordTaskLatency(op string, seconds float64) {
	r.taskLatency.WithLabelValues(op).Observe(seconds)
}

// RecordRunDuration records a full run's wall-clock duration.
func (r *Recorder) RecordRunDuration(d time.Duration) {
	r.runDuration.Observe(d.Seconds())
}
