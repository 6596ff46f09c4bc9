//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"biolink-gateway/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideCollector,
	ProvideTracer,
	ProvideBreaker,
	ProvideCache,
	ProvideBackend,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup stops
// background cache maintenance and trace export; Container.Close releases
// connections.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
