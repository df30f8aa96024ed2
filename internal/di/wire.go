//go:build wireinject
// +build wireinject

package di

import (
	"AllocDesk/pkg/config"
	"AllocDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideRateLimiter,
		ProvideCache,

		// Data sources
		ProvidePriceProvider,
		ProvideMacroProvider,
		ProvideMarketData,

		// History sinks
		ProvideHistoryStore,
		ProvideClickHouseClient,
		ProvideHistoryMirror,
		ProvideKafkaProducer,
		ProvideDecisionPublisher,

		// Use cases
		ProvidePlannerConfig,
		ProvidePlanner,
		ProvideHistory,

		// HTTP handlers
		ProvideAPIHandler,
		ProvideWebHandler,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
