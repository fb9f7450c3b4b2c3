//go:build wireinject
// +build wireinject

package di

import (
	"RateScope/pkg/config"
	"RateScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideCache,

		// Input documents
		ProvideDataSource,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
