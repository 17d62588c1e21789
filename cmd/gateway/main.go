package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GeoProxyPlatform/internal/auth"
	httphandler "GeoProxyPlatform/internal/handler/http"
	"GeoProxyPlatform/internal/metrics"
	"GeoProxyPlatform/internal/middleware"
	"GeoProxyPlatform/internal/prober"
	"GeoProxyPlatform/internal/proxy"
	"GeoProxyPlatform/internal/registry"
	"GeoProxyPlatform/internal/repository/postgres"
	"GeoProxyPlatform/internal/token"
	"GeoProxyPlatform/pkg/config"
	"GeoProxyPlatform/pkg/database"
	"GeoProxyPlatform/pkg/logger"
	"GeoProxyPlatform/pkg/ratelimit"
	pkgredis "GeoProxyPlatform/pkg/redis"
)

func main() {
	// Инициализация конфигурации
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, "geo-proxy-gateway")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		if err := appLogger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	// Инициализация OpenTelemetry
	if err := metrics.InitializeOpenTelemetry("geo_proxy_gateway"); err != nil {
		appLogger.Error("Failed to initialize OpenTelemetry", logger.Error(err))
		os.Exit(1)
	}

	// Инициализация метрик
	metricCollector := metrics.NewMetrics("geo_proxy_gateway")

	// Подключение к PostgreSQL
	dbConfig := database.NewConfig()
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password
	dbConfig.Database = cfg.Database.Name

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()

	db, err := database.Connect(dbCtx, dbConfig)
	if err != nil {
		appLogger.Error("Failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Подключение к Redis
	redisConfig := pkgredis.NewConfig()
	redisConfig.Addr = cfg.Redis.Addr
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		redisConfig.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConn > 0 {
		redisConfig.MinIdleConn = cfg.Redis.MinIdleConn
	}

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer redisCancel()

	redisClient, err := pkgredis.Connect(redisCtx, redisConfig)
	if err != nil {
		appLogger.Error("Failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Репозитории
	tokenRepo := postgres.NewTokenRepository(db.Pool, appLogger)
	userRepo := postgres.NewUserRepository(db.Pool, appLogger)

	// Токены и авторизация
	tokenManager := token.NewManager(cfg.JWT.Secret, cfg.TokenDuration())
	tokenService := token.NewService(tokenManager, tokenRepo, appLogger, metricCollector)
	gate := auth.NewGate(tokenService, userRepo, appLogger)

	// Реестр регионов, проверки доступности и проксирование
	regionRegistry := registry.New()
	endpointProber := prober.NewProber(cfg.ProbeTimeoutDuration(), appLogger, metricCollector)
	aggregator := prober.NewAggregator(regionRegistry, endpointProber, appLogger)
	selector := proxy.NewSelector()
	executor := proxy.NewExecutor(cfg.ForwardTimeoutDuration(), appLogger, metricCollector)

	// HTTP маршруты
	mux := http.NewServeMux()

	handler := httphandler.NewHandler(appLogger, aggregator, selector, executor, tokenService)
	handler.RegisterRoutes(mux, gate)

	healthHandler := httphandler.NewHealthHandler(appLogger, db, redisClient)
	healthHandler.RegisterRoutes(mux)

	mux.Handle("/metrics", metricCollector.GetHandler())

	// Обертываем в middleware: от внутреннего к внешнему
	var httpHandler http.Handler = mux
	httpHandler = metricCollector.Middleware(httpHandler)
	if cfg.RateLimiting.Enabled {
		rateLimiter := ratelimit.NewRedisRateLimiter(redisClient.Client)
		httpHandler = middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimiting.RequestsPerMinute, time.Minute, appLogger)(httpHandler)
	}
	httpHandler = middleware.CORSMiddleware([]string{"*"}, appLogger)(httpHandler)
	httpHandler = middleware.LoggingMiddleware(appLogger)(httpHandler)
	httpHandler = middleware.RecoveryMiddleware(appLogger)(httpHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: httpHandler,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		appLogger.Info("Starting gateway server",
			logger.String("addr", server.Addr),
			logger.Int("regions", len(regionRegistry.Regions())))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", logger.Error(err))
		}
	}()

	// Обработка сигналов для graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown failed", logger.Error(err))
	}

	appLogger.Info("Server stopped")
}
