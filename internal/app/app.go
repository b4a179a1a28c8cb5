// Package app assembles the HTTP application: middleware, static assets, built-in endpoints
// and externally supplied routers.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tradepros/tradepro-agents/internal/config"
	"github.com/tradepros/tradepro-agents/internal/handlers"
	"github.com/tradepros/tradepro-agents/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const (
	// Title is the application title.
	Title = "TradePro AI Agents"
	// ServiceName identifies the service in traces.
	ServiceName = "tradepro-agents-api"
	// StaticPrefix is the URL prefix of the static mount.
	StaticPrefix = "/static/"
)

// Router is a collection of routes defined outside this package.
type Router interface {
	RegisterRoutes(r *mux.Router)
}

type mount struct {
	prefix     string
	router     Router
	middleware []mux.MiddlewareFunc
}

type options struct {
	mounts  []mount
	health  map[string]handlers.Pinger
	openAPI *handlers.OpenAPIHandler
	tracing bool
}

// Option configures New.
type Option func(*options)

// WithRouter mounts router under prefix. Middleware applies only to that router's routes.
func WithRouter(prefix string, router Router, mw ...mux.MiddlewareFunc) Option {
	return func(o *options) {
		o.mounts = append(o.mounts, mount{prefix: prefix, router: router, middleware: mw})
	}
}

// WithHealthCheck adds a dependency to the extended health check.
func WithHealthCheck(name string, p handlers.Pinger) Option {
	return func(o *options) {
		o.health[name] = p
	}
}

// WithOpenAPI serves the OpenAPI document.
func WithOpenAPI(h *handlers.OpenAPIHandler) Option {
	return func(o *options) {
		o.openAPI = h
	}
}

// WithTracing enables otelmux request tracing.
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

// New builds the application handler from cfg. A missing static directory is an error.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (http.Handler, error) {
	o := &options{health: make(map[string]handlers.Pinger)}
	for _, opt := range opts {
		opt(o)
	}

	static, err := handlers.NewStaticHandler(cfg.StaticDir, StaticPrefix, cfg.Reload)
	if err != nil {
		return nil, fmt.Errorf("failed to mount static assets: %w", err)
	}

	r := mux.NewRouter()
	if o.tracing {
		r.Use(otelmux.Middleware(ServiceName))
	}

	r.HandleFunc("/", handlers.Root(Title)).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handlers.NewHealthChecker(o.health).HealthCheck).Methods(http.MethodGet)
	if o.openAPI != nil {
		o.openAPI.RegisterRoutes(r)
	}
	r.PathPrefix(StaticPrefix).Handler(static).Methods(http.MethodGet, http.MethodHead)

	for _, m := range o.mounts {
		sub := r.PathPrefix(m.prefix).Subrouter()
		sub.Use(m.middleware...)
		m.router.RegisterRoutes(sub)
		logger.Info("router_mounted", zap.String("prefix", m.prefix))
	}

	// Outermost first. Wrapping the router instead of r.Use keeps unmatched
	// routes and preflights inside the chain.
	var h http.Handler = r
	h = middleware.Logging(logger)(h)
	h = middleware.Audit(logger)(h)
	h = middleware.ErrorHandler(logger)(h)
	h = middleware.SecurityHeaders(cfg.EnableHSTS, StaticPrefix)(h)
	h = middleware.CORS(cfg.AllowedOrigins(), logger)(h)
	h = middleware.RequestID(h)

	return h, nil
}

// NewServer returns an http.Server for handler listening on cfg.Addr().
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
