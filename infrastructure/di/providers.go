package di

import (
	"context"
	"fmt"
	"net/http"

	"gooey-backend/application/commands/bus"
	commandhandlers "gooey-backend/application/commands/handlers"
	"gooey-backend/application/ports"
	querybus "gooey-backend/application/queries/bus"
	queryhandlers "gooey-backend/application/queries/handlers"
	"gooey-backend/application/services"
	domainconfig "gooey-backend/domain/config"
	"gooey-backend/domain/events"
	"gooey-backend/infrastructure/config"
	"gooey-backend/infrastructure/messaging"
	"gooey-backend/infrastructure/messaging/eventbridge"
	"gooey-backend/infrastructure/persistence/dynamodb"
	"gooey-backend/infrastructure/persistence/memory"
	"gooey-backend/infrastructure/persistence/resilience"
	"gooey-backend/interfaces/http/rest"
	"gooey-backend/interfaces/http/rest/handlers"
	"gooey-backend/interfaces/websocket"
	"gooey-backend/pkg/auth"
	pkgerrors "gooey-backend/pkg/errors"
	"gooey-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "gooey-backend"

// ProvideLogLevel parses the configured level into an adjustable level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return zap.NewAtomicLevelAt(level), nil
}

// ProvideLogger creates a new logger instance bound to level
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("gooey")
}

// ProvideTracing starts the OTLP exporter when tracing is enabled
func ProvideTracing(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	endpoint := ""
	if cfg.EnableTracing {
		endpoint = cfg.OTLPEndpoint
	}
	return observability.InitTracing(ctx, serviceName, cfg.Environment, endpoint)
}

// ProvideTracer exposes the tracer of the provider
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDomainConfig returns the business rules
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideSpaceRepository selects the space store; lookups are coalesced
func ProvideSpaceRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.SpaceRepository {
	var repo ports.SpaceRepository = memory.NewSpaceRepository()
	if cfg.Storage == config.StorageDynamoDB {
		repo = dynamodb.NewSpaceRepository(client, cfg.DynamoDBTable, logger)
	}
	return resilience.NewCoalescingSpaceRepository(repo)
}

// ProvideNodeRepository selects the node store. DynamoDB access goes through a circuit breaker.
func ProvideNodeRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	metrics *observability.Collector,
	logger *zap.Logger,
) ports.NodeRepository {
	if cfg.Storage != config.StorageDynamoDB {
		return memory.NewNodeRepository()
	}

	breakerCfg := resilience.DefaultBreakerConfig("node-store")
	if cfg.BreakerMaxFailures > 0 {
		breakerCfg.MaxFailures = cfg.BreakerMaxFailures
	}
	if cfg.BreakerTimeout > 0 {
		breakerCfg.Timeout = cfg.BreakerTimeout
	}

	repo := dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	return resilience.NewBreakerNodeRepository(repo, breakerCfg, metrics, logger)
}

// ProvideNoteRepository selects the note store
func ProvideNoteRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.NoteRepository {
	if cfg.Storage == config.StorageDynamoDB {
		return dynamodb.NewNoteRepository(client, cfg.DynamoDBTable, logger)
	}
	return memory.NewNoteRepository()
}

// ProvideLocalBus creates the in-process event bus
func ProvideLocalBus(logger *zap.Logger) *messaging.LocalBus {
	return messaging.NewLocalBus(logger)
}

// ProvideEventPublisher fans events out to the local bus and, when
// configured, to EventBridge and the DynamoDB event log
func ProvideEventPublisher(
	cfg *config.Config,
	local *messaging.LocalBus,
	ebClient *awseventbridge.Client,
	dbClient *awsdynamodb.Client,
	logger *zap.Logger,
) ports.EventPublisher {
	publishers := messaging.FanOut{local}

	if cfg.EventBusName != "" {
		publishers = append(publishers, eventbridge.NewPublisher(ebClient, cfg.EventBusName, logger))
	}
	if cfg.EventLog && cfg.Storage == config.StorageDynamoDB {
		publishers = append(publishers, dynamodb.NewEventLog(dbClient, cfg.DynamoDBTable, cfg.EventLogRetention, logger))
	}

	logger.Info("Event publishers configured", zap.Int("count", len(publishers)))
	return publishers
}

// ProvidePlacementCommitter commits canvas placements through the space service
func ProvidePlacementCommitter(
	spaces *services.SpaceService,
	metrics *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) services.Committer {
	return services.NewPlacementCommitter(spaces, metrics, tracer, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	spaces *services.SpaceService,
	notes *services.NoteService,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)

	err := commandhandlers.Register(commandBus,
		commandhandlers.NewSpaceCommandHandler(spaces, logger),
		commandhandlers.NewNoteCommandHandler(notes, logger),
	)
	if err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	spaces *services.SpaceService,
	notes *services.NoteService,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(metrics),
	)

	err := queryhandlers.Register(queryBus,
		queryhandlers.NewSpaceQueryHandler(spaces, logger),
		queryhandlers.NewNoteQueryHandler(notes, logger),
	)
	if err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler; stack traces are shown in development
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRateLimiter creates the per-client token bucket limiter
func ProvideRateLimiter(cfg *config.Config) *auth.TokenBucketLimiter {
	return auth.NewTokenBucketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

// ProvideJWTValidator returns nil when no secret is configured, which leaves every caller a guest
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideHub creates the canvas hub and subscribes it to node placements
func ProvideHub(local *messaging.LocalBus, metrics *observability.Collector, logger *zap.Logger) *websocket.Hub {
	hub := websocket.NewHub(metrics, logger)
	local.Subscribe(events.TypeNodePlaced, hub.HandleEvent)
	return hub
}

// ProvideCanvasServer creates the canvas websocket endpoint
func ProvideCanvasServer(
	hub *websocket.Hub,
	spaces *services.SpaceService,
	committer services.Committer,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) *websocket.Server {
	return websocket.NewServer(hub, spaces, committer, websocket.SettingsFromConfig(cfg), metrics, logger)
}

// ProvideHealthHandler checks the DynamoDB table when it is the store
func ProvideHealthHandler(cfg *config.Config, client *awsdynamodb.Client) *handlers.HealthHandler {
	checks := map[string]handlers.ReadinessCheck{}
	if cfg.Storage == config.StorageDynamoDB {
		checks["dynamodb"] = func(ctx context.Context) error {
			_, err := client.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{
				TableName: aws.String(cfg.DynamoDBTable),
			})
			return err
		}
	}
	return handlers.NewHealthHandler(checks)
}

// ProvideRouter assembles the HTTP router. Lambda deployments have no canvas socket.
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	canvas *websocket.Server,
	health *handlers.HealthHandler,
	limiter *auth.TokenBucketLimiter,
	validator *auth.JWTValidator,
	metrics *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	var canvasHandler http.Handler
	if !cfg.IsLambda {
		canvasHandler = canvas
	}

	var rateLimiter auth.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = limiter
	}

	return rest.NewRouter(
		commandBus,
		queryBus,
		canvasHandler,
		health,
		rateLimiter,
		validator,
		metrics,
		errorHandler,
		cfg,
		logger,
	)
}
