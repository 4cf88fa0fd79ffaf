package rest

import (
	"net/http"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/interfaces/http/rest/handlers"
	"hexagonal-todo/interfaces/http/rest/middleware"
	"hexagonal-todo/pkg/auth"
	"hexagonal-todo/pkg/errors"
	"hexagonal-todo/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options toggles the optional parts of the router
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
}

// Router creates and configures the HTTP router
type Router struct {
	todos     ports.TodoUseCases
	validator *auth.JWTValidator
	collector *observability.Collector
	tracer    *observability.Tracer
	opts      Options
	logger    *zap.Logger
}

// NewRouter creates a new router instance. validator, collector and
// tracer may be nil.
func NewRouter(
	todos ports.TodoUseCases,
	validator *auth.JWTValidator,
	collector *observability.Collector,
	tracer *observability.Tracer,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		todos:     todos,
		validator: validator,
		collector: collector,
		tracer:    tracer,
		opts:      opts,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.tracer.Middleware)
	if rt.collector != nil {
		router.Use(rt.collector.Middleware)
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	todoHandler := handlers.NewTodoHandler(rt.todos, errors.NewErrorHandler(rt.logger, rt.opts.Debug), rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", todoHandler.Ping)

		r.Route("/todos", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/{id}", todoHandler.GetTodo)
			r.Put("/{id}", todoHandler.UpdateTodo)
			r.Delete("/{id}", todoHandler.DeleteTodo)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
