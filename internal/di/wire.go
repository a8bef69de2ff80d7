//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Cache tiers and durable storage
		ProvideTTLCache,
		ProvidePostgres,
		ProvideQuoteStore,
		ProvideUserStore,
		ProvideWatchlistStore,

		// Archive pipeline
		ProvideClickHouseClient,
		ProvideArchiver,
		ProvideKafkaConsumer,
		ProvideQuoteEventsHandler,

		// Domain services
		ProvideQuoteClient,
		ProvideTokenIssuer,
		ProvideUserService,
		ProvideWatchlistService,
		ProvideQuoteWarmer,

		// HTTP surface and lifecycle
		ProvideHandlers,
		ProvideApp,
	)
	return &server.App{}, nil
}
