package rest

import (
	"net/http"
	"strings"

	"gooey-backend/application/commands/bus"
	querybus "gooey-backend/application/queries/bus"
	"gooey-backend/infrastructure/config"
	"gooey-backend/interfaces/http/rest/handlers"
	"gooey-backend/interfaces/http/rest/middleware"
	"gooey-backend/pkg/auth"
	pkgerrors "gooey-backend/pkg/errors"
	"gooey-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	canvas       http.Handler
	health       *handlers.HealthHandler
	limiter      auth.RateLimiter
	validator    *auth.JWTValidator
	metrics      *observability.Collector
	errorHandler *pkgerrors.ErrorHandler
	cfg          *config.Config
	logger       *zap.Logger
}

// NewRouter creates a new router instance. canvas, limiter, validator and
// metrics are optional.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	canvas http.Handler,
	health *handlers.HealthHandler,
	limiter auth.RateLimiter,
	validator *auth.JWTValidator,
	metrics *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		canvas:       canvas,
		health:       health,
		limiter:      limiter,
		validator:    validator,
		metrics:      metrics,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(versionMiddleware)

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.health.Health)
	router.Get("/ready", rt.health.Ready)
	if rt.cfg.EnableMetrics && rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Identify(rt.validator, rt.errorHandler, rt.logger))
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.errorHandler, rt.logger))
		}

		spaceHandler := handlers.NewSpaceHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		noteHandler := handlers.NewNoteHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/space", func(r chi.Router) {
				// The canvas socket outlives any request timeout
				if rt.canvas != nil {
					r.Handle("/{id}/canvas", rt.canvas)
				}

				r.Group(func(r chi.Router) {
					rt.withTimeout(r)
					r.Get("/breadcrumb/{id}", spaceHandler.Breadcrumb)
					r.Get("/{id}", spaceHandler.Exists)
					r.Put("/{id}", spaceHandler.Update)
					r.Get("/{id}/nodes", spaceHandler.ListNodes)
				})
			})

			r.Route("/note", func(r chi.Router) {
				rt.withTimeout(r)
				r.Post("/", noteHandler.Create)
				r.Get("/{id}", noteHandler.Get)
				r.Put("/{id}", noteHandler.Update)
				r.Delete("/{id}", noteHandler.Delete)
			})
		})

		r.Route("/api/v2", func(r chi.Router) {
			rt.withTimeout(r)
			r.Post("/space", spaceHandler.Create)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "ROUTE_NOT_FOUND", "route not found")
	})

	return router
}

func (rt *Router) withTimeout(r chi.Router) {
	if rt.cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(rt.cfg.RequestTimeout))
	}
}

// versionMiddleware adds the API version header to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := ""
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1"):
			version = "v1"
		case strings.HasPrefix(r.URL.Path, "/api/v2"):
			version = "v2"
		}

		if version != "" {
			w.Header().Set("X-API-Version", version)
			w.Header().Set("X-API-Latest", "v2")
		}

		next.ServeHTTP(w, r)
	})
}
