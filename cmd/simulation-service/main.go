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

	"golang-paper-trader/internal/entity"
	"golang-paper-trader/internal/simulation/config"
	delivery "golang-paper-trader/internal/simulation/delivery/http"
	_ "golang-paper-trader/internal/simulation/docs"
	"golang-paper-trader/internal/simulation/metrics"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/postgres"
	"golang-paper-trader/pkg/redis"
	"golang-paper-trader/pkg/sqlite"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the simulation service",
	Run:   runServe,
}

func openDatabase(cfg *config.Config, appLogger *logger.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		db, err := sqlite.NewDB(cfg.Database.Path, cfg.Database.LogLevel)
		if err != nil {
			return nil, err
		}
		appLogger.Info("Using sqlite database", logger.StringField("path", cfg.Database.Path))
		if err := db.AutoMigrate(&entity.SimAccount{}, &entity.SimPosition{}, &entity.SimTrade{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	return db.DB, nil
}

// openRedis returns nil when Redis is not configured or unreachable; trade
// events and last prices are then dropped.
func openRedis(cfg *config.Config, appLogger *logger.Logger) *redis.Client {
	if cfg.Redis.Host == "" {
		appLogger.Info("Redis not configured, trade events disabled")
		return nil
	}
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Warn("Redis unavailable, trade events disabled", logger.ErrorField(err))
		return nil
	}
	return redisClient
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Simulation Service", logger.Field("name", cfg.App.Name), logger.StringField("driver", cfg.Database.Driver))

	pricing, err := service.NewPricing(cfg.Simulation)
	if err != nil {
		appLogger.Fatal("Invalid simulation configuration", logger.ErrorField(err))
	}

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rdb *goRedis.Client
	if redisClient := openRedis(cfg, appLogger); redisClient != nil {
		defer redisClient.Close()
		rdb = redisClient.Client
	}

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	yahooRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	tradeEventRepo := repository.NewTradeEventRepository(rdb, cfg.Redis.StreamMaxLen)

	// Initialize services
	quoteSvc := service.NewQuoteService(cfg, appLogger, yahooRepo, tradeEventRepo)
	portfolioSvc := service.NewPortfolioService(appLogger, pricing, cfg.Simulation.RecentTradesLimit, accountRepo, positionRepo, tradeRepo)
	orderSvc := service.NewOrderService(cfg, appLogger, pricing, transactor, accountRepo, positionRepo, tradeRepo, tradeEventRepo, quoteSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(delivery.ContextRequestID())
	e.Use(metrics.Middleware())
	e.Use(middleware.CORS())

	health := delivery.Health("Simulation service is running")
	e.GET("/", health)
	e.GET("/health", health)
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", swagger.WrapHandler)

	simulationHandler := delivery.NewSimulationHandler(orderSvc, portfolioSvc, quoteSvc, appLogger)
	simulationHandler.RegisterRoutes(e.Group("/simulation"))

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Paper Trading Simulation API
// @version 1.0
// @description Simulated order execution, portfolio and quote endpoints.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{Use: "simulation-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-simulation.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing simulation-service CLI: %s\n", err)
		os.Exit(1)
	}
}
