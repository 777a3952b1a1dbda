package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/biv3k224/ecommerce/internal/cache"
	"github.com/biv3k224/ecommerce/internal/events"
	"github.com/biv3k224/ecommerce/internal/featureflags"
	"github.com/biv3k224/ecommerce/internal/handler"
	"github.com/biv3k224/ecommerce/internal/infrastructure/logger"
	"github.com/biv3k224/ecommerce/internal/infrastructure/redis"
	"github.com/biv3k224/ecommerce/internal/observability/metrics"
	"github.com/biv3k224/ecommerce/internal/observability/tracing"
	"github.com/biv3k224/ecommerce/internal/reliability/retry"
	"github.com/biv3k224/ecommerce/internal/repository"
	"github.com/biv3k224/ecommerce/internal/security"
	"github.com/biv3k224/ecommerce/internal/security/audit"
	"github.com/biv3k224/ecommerce/internal/security/auth"
	"github.com/biv3k224/ecommerce/internal/security/middleware"
	"github.com/biv3k224/ecommerce/internal/security/ratelimit"
	"github.com/biv3k224/ecommerce/internal/service"
	"github.com/biv3k224/ecommerce/internal/worker"
	"github.com/biv3k224/ecommerce/pkg/config"
	"github.com/biv3k224/ecommerce/pkg/database"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	log.Info("starting store inventory server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "storeinventory", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Database, retried so the server survives a slow-starting postgres.
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "database connect",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, &database.Config{
				Host:     cfg.DBHost,
				Port:     cfg.DBPort,
				User:     cfg.DBUser,
				Password: cfg.DBPassword,
				Database: cfg.DBName,
				SSLMode:  cfg.DBSSLMode,
			}, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Catalog cache backend: Redis when configured, in-memory otherwise.
	var catalog cache.Store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		catalog = cache.NewRedisStore(redisClient, log)
		log.Info("catalog cache backed by redis")
	} else {
		catalog = cache.NewMemoryStore()
		log.Info("catalog cache backed by memory")
	}

	broker := events.NewBroker(64, log)

	// Repositories and services
	productRepo := repository.NewPostgresProductRepository(pool.GetDB(), log)
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "storeinventory",
		time.Duration(cfg.JWTExpiryHours)*time.Hour)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	inventoryService := service.NewInventoryService(productRepo, catalog, broker, cacheTTL, log)
	authService := service.NewAuthService(userRepo, tokenManager, log)

	// Security components
	authzService := security.NewAuthorizationService(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowSecs)*time.Second)
	auditLogger := audit.NewLogger(log)

	// Handlers
	publicProducts := handler.NewPublicProductHandler(inventoryService, log)
	adminProducts := handler.NewAdminProductHandler(inventoryService, log)
	authHandler := handler.NewAuthHandler(authService, auditLogger, log)
	healthHandler := handler.NewHealthHandler(pool.GetDB(), redisClient, log)
	feedHandler := handler.NewInventoryFeedHandler(broker, log, cfg.CORSAllowedOrigins)

	mux := http.NewServeMux()

	// Public catalog
	mux.HandleFunc("GET /api/public/products", publicProducts.List)
	mux.HandleFunc("GET /api/public/products/available", publicProducts.Available)
	mux.HandleFunc("GET /api/public/products/categories", publicProducts.Categories)
	mux.HandleFunc("GET /api/public/products/category/{category}", publicProducts.ByCategory)
	mux.HandleFunc("GET /api/public/products/category/{category}/page", publicProducts.CategoryPage)
	mux.HandleFunc("GET /api/public/products/search", publicProducts.Search)
	mux.HandleFunc("GET /api/public/products/search/category", publicProducts.SearchCategory)
	mux.HandleFunc("GET /api/public/products/filter", publicProducts.Filter)
	mux.HandleFunc("GET /api/public/products/page", publicProducts.Page)
	mux.HandleFunc("GET /api/public/products/{id}", publicProducts.Get)

	// Admin management (JWT-gated by middleware)
	mux.HandleFunc("GET /api/admin/products", adminProducts.List)
	mux.HandleFunc("POST /api/admin/products", adminProducts.Create)
	mux.HandleFunc("GET /api/admin/products/page", adminProducts.Page)
	mux.HandleFunc("GET /api/admin/products/low-stock", adminProducts.LowStock)
	mux.HandleFunc("GET /api/admin/products/search", adminProducts.Search)
	mux.HandleFunc("GET /api/admin/products/stats/categories", adminProducts.CategoryStats)
	mux.HandleFunc("GET /api/admin/products/category/{category}", adminProducts.ByCategory)
	mux.HandleFunc("GET /api/admin/products/{id}", adminProducts.Get)
	mux.HandleFunc("PUT /api/admin/products/{id}", adminProducts.Update)
	mux.HandleFunc("DELETE /api/admin/products/{id}", adminProducts.Delete)
	mux.HandleFunc("PATCH /api/admin/products/{id}/availability", adminProducts.Availability)

	// Auth
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/validate", authHandler.Validate)

	// Ops
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	if featureflags.Enabled(featureflags.FlagInventoryFeed) {
		mux.Handle("GET /ws/inventory", feedHandler)
		log.Info("inventory websocket feed enabled")
	}

	// Middleware chain: request ID -> access log -> CORS -> content type
	// -> JWT -> rate limit -> audit -> metrics -> routes
	var root http.Handler = mux
	root = metrics.HTTPMetricsMiddleware(root)
	root = middleware.AuditMiddleware(auditLogger)(root)
	root = middleware.RateLimitMiddleware(rateLimiter, cfg.LoginRateLimitMax,
		time.Duration(cfg.LoginRateLimitWindowS)*time.Second, log)(root)
	root = middleware.JWTMiddleware(tokenManager, authzService, auditLogger, log)(root)
	root = middleware.ValidateJSONContentType(log)(root)
	root = middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(root)
	root = middleware.AccessLogMiddleware(log)(root)
	root = middleware.RequestIDMiddleware(root)
	root = otelhttp.NewHandler(root, "storeinventory")

	if featureflags.Enabled(featureflags.FlagLowStockMonitor) {
		lowStockWorker := worker.NewLowStockWorker(
			productRepo,
			broker,
			log,
			cfg.LowStockThreshold,
			time.Duration(cfg.LowStockIntervalMinutes)*time.Minute,
		)
		go lowStockWorker.Start(ctx)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Int("rate_limit_window_seconds", cfg.RateLimitWindowSecs),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	rateLimiter.Stop()
	log.Info("server stopped")
}
