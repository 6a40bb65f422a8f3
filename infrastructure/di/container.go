package di

import (
	"context"
	"errors"

	"gooey-backend/application/commands/bus"
	querybus "gooey-backend/application/queries/bus"
	"gooey-backend/infrastructure/config"
	"gooey-backend/infrastructure/messaging"
	"gooey-backend/interfaces/http/rest"
	"gooey-backend/interfaces/websocket"
	"gooey-backend/pkg/auth"
	"gooey-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	LogLevel    zap.AtomicLevel
	Metrics     *observability.Collector
	Tracing     *observability.TracerProvider
	LocalBus    *messaging.LocalBus
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	RateLimiter *auth.TokenBucketLimiter
	Hub         *websocket.Hub
	Router      *rest.Router
}

// Shutdown disconnects canvas clients, flushes spans and syncs the logger
func (c *Container) Shutdown(ctx context.Context) error {
	c.Hub.Close()

	var errs []error
	if err := c.Tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	// Sync fails on stderr-backed loggers in terminals; that is not worth reporting
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
