//go:build wireinject
// +build wireinject

package di

import (
	"DarkScan/pkg/config"
	"DarkScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisClient,
		ProvideCache,

		// Repositories
		ProvideBarSource,
		ProvideResultStore,
		ProvideResultWriter,
		ProvideSignalPublisher,

		// Domain services
		ProvideAnalyzer,
		ProvideClassifier,
		ProvideScreener,

		// Use cases
		ProvideSimulator,
		ProvideProgressChannel,
		ProvideGridSearch,
		ProvideAggregator,
		ProvideBacktestRunner,
		ProvideScanner,
		ProvideDefaultGrid,
		ProvideScanConfig,
		ProvideBacktestRunJob,
		ProvideRunQueue,

		// HTTP surface
		ProvideHandler,
		ProvideProgressHub,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
