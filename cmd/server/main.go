package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tradepros/tradepro-agents/internal/app"
	"github.com/tradepros/tradepro-agents/internal/config"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/handlers"
	"github.com/tradepros/tradepro-agents/internal/logger"
	"github.com/tradepros/tradepro-agents/internal/middleware"
	"github.com/tradepros/tradepro-agents/internal/services/ledger"
	"github.com/tradepros/tradepro-agents/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// A missing .env file is fine; the environment alone is enough
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.DebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.Reload, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.String("addr", cfg.Addr()),
		zap.String("frontend_url", logger.SanitizeOrigin(cfg.FrontendURL)),
		zap.Strings("allowed_origins", cfg.AllowedOrigins()),
		zap.Bool("reload", cfg.Reload),
		zap.Bool("debug_mode", debugMode),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	shutdownTracer, err := telemetry.Setup(context.Background(), cfg.OTELEnabled, app.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_otel_tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	opts := []app.Option{}
	if cfg.OTELEnabled {
		opts = append(opts, app.WithTracing())
	}

	// Trade proofs live in PostgreSQL when configured, process memory otherwise
	var repo database.TradeProofRepositoryInterface
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()

		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			zapLogger.Fatal("failed_to_ensure_schema", zap.Error(err))
		}

		repo = database.NewTradeProofRepository(db)
		zapLogger.Info("connected_to_database")
	} else {
		repo = database.NewMemoryTradeProofRepository()
		zapLogger.Warn("database_url_not_configured_using_memory_ledger")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		opts = append(opts, app.WithHealthCheck("redis", handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})))
		zapLogger.Info("connected_to_redis")
	}

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, redisClient, cfg.TrustProxyHeaders)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	ledgerService := ledger.NewService(repo, zapLogger)
	tradeHandler := handlers.NewTradeHandler(ledgerService, zapLogger)
	opts = append(opts,
		app.WithHealthCheck("ledger", ledgerService),
		app.WithRouter("/api/trades", tradeHandler,
			rateLimitMW,
			middleware.MaxRequestSize(middleware.DefaultMaxRequestSize),
			middleware.ContentType,
			middleware.Timeout(middleware.DefaultRequestTimeout),
		),
	)

	openAPIHandler, err := handlers.NewOpenAPIHandler(cfg.OpenAPIPath)
	if err != nil {
		zapLogger.Warn("openapi_document_unavailable",
			zap.String("path", logger.SanitizePath(cfg.OpenAPIPath)),
			zap.Error(err),
		)
	} else {
		opts = append(opts, app.WithOpenAPI(openAPIHandler))
	}

	handler, err := app.New(cfg, zapLogger, opts...)
	if err != nil {
		zapLogger.Fatal("failed_to_build_application", zap.Error(err))
	}

	srv := app.NewServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zapLogger.Info("server_shutting_down")
	case err := <-serverErr:
		zapLogger.Fatal("server_failed_to_start", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}
