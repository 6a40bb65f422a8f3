//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"gooey-backend/application/services"
	"gooey-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideTracer,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideDomainConfig,
	ProvideSpaceRepository,
	ProvideNodeRepository,
	ProvideNoteRepository,
	ProvideLocalBus,
	ProvideEventPublisher,
	services.NewNoteService,
	services.NewSpaceService,
	ProvidePlacementCommitter,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideRateLimiter,
	ProvideJWTValidator,
	ProvideHub,
	ProvideCanvasServer,
	ProvideHealthHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
