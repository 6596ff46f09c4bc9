package rest

import (
	"context"
	"net/http"
	"time"

	querybus "biolink-gateway/application/queries/bus"
	"biolink-gateway/infrastructure/config"
	"biolink-gateway/infrastructure/observability"
	"biolink-gateway/interfaces/http/rest/handlers"
	"biolink-gateway/interfaces/http/rest/middleware"
	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// Pinger checks the backend's connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	queryBus   *querybus.QueryBus
	graphCache handlers.CacheInvalidator
	health     Pinger
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	cfg *config.Config,
	queryBus *querybus.QueryBus,
	graphCache handlers.CacheInvalidator,
	health Pinger,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		queryBus:   queryBus,
		graphCache: graphCache,
		health:     health,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.Tracing.Enabled {
		router.Use(observability.TracingMiddleware(rt.cfg.Tracing.ServiceName))
	}
	if rt.metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.metrics))
	}

	if rt.cfg.CORS.Enabled {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.cfg.CORS.AllowedOrigins,
			AllowedMethods: rt.cfg.CORS.AllowedMethods,
			AllowedHeaders: rt.cfg.CORS.AllowedHeaders,
			ExposedHeaders: []string{"X-Request-ID", "X-Trace-ID"},
			MaxAge:         rt.cfg.CORS.MaxAge,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil && rt.cfg.Metrics.Enabled {
		path := rt.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.Method(http.MethodGet, path, rt.metrics.Handler())
	}

	bioentity := handlers.NewBioentityHandler(rt.queryBus, errorHandler, rt.logger)
	graph := handlers.NewGraphHandler(rt.queryBus, rt.graphCache, errorHandler, rt.logger)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(rt.cfg.Server.RequestTimeout))

		r.Route("/bioentity", func(r chi.Router) {
			r.Get("/gene/{id}/phenotypes", bioentity.GetGenePhenotypes)
			r.Get("/{type}/{id}", bioentity.GetEntity)
			r.Get("/{id}", bioentity.GetEntity)
		})

		r.Route("/graph/node", func(r chi.Router) {
			if rt.cfg.Cache.AdminEnabled {
				r.Delete("/cache", graph.ClearCache)
			}
			r.Get("/{id}", graph.GetNodeGraph)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready only when the backend answers
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := rt.health.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
