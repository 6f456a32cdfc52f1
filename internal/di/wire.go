//go:build wireinject
// +build wireinject

package di

import (
	"TechScreen/pkg/config"
	"TechScreen/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRecorder,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideBarCache,

		// Data access
		ProvideBarSource,
		ProvideUniverseProvider,
		ProvideCHSignalStore,
		ProvideSignalStore,
		ProvideSignalHistory,
		ProvideReportSink,

		// Use cases
		ProvideOrchestrators,
		ProvideManager,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
