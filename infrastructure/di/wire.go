//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"hexagonal-todo/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideSQSClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideClock,
	ProvideTodoRepository,
	ProvideEventQueue,
	ProvideEventPublisher,
	ProvideEventSink,
	ProvideCollector,
	ProvideMetrics,
	ProvideTracer,
	ProvideJWTValidator,
	ProvideTodoValidator,
	ProvideTodoService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
