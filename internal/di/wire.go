//go:build wireinject
// +build wireinject

package di

import (
	"TradePilot/pkg/config"
	"TradePilot/pkg/server"

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
		ProvideKafkaConsumer,

		// Repositories
		ProvideTradeLog,
		ProvidePublisher,
		ProvidePriceFeed,

		// Signal ingestion
		ProvideSignalInbox,
		ProvideSignalsHandler,
		ProvideSignalSources,
		ProvideSignalGatherer,

		// Fusion
		ProvideFusionEngine,
		ProvideFusionCache,
		ProvideFusionService,

		// Ledger and execution
		ProvideLedger,
		ProvideExecutionEngine,
		ProvideTradeCycle,

		// HTTP API and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
