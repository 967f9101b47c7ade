package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/delivery/consumer"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/redis"

	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trade event consumer",
	Run:   runServe,
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

	appLogger.Info("Starting Trade Event Consumer", logger.Field("name", cfg.App.Name), logger.StringField("consumer", cfg.TradeEvents.ConsumerName))

	if cfg.Redis.Host == "" {
		appLogger.Fatal("Redis host is required for the trade event consumer")
	}
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	streamRepo := repository.NewTradeEventStreamRepository(redisClient.Client, cfg.TradeEvents.ConsumerName)
	tradeEventRepo := repository.NewTradeEventRepository(redisClient.Client, cfg.Redis.StreamMaxLen)

	if err := streamRepo.EnsureGroup(ctx); err != nil {
		appLogger.Fatal("Failed to prepare trade stream", logger.ErrorField(err))
	}

	tradeEventSvc := service.NewTradeEventService(cfg, appLogger, streamRepo, tradeEventRepo)

	redisConsumer := consumer.NewRedisConsumer(cfg, tradeEventSvc, appLogger)
	redisConsumer.Start(ctx)

	<-ctx.Done()

	appLogger.Info("Shutting down trade event consumer...")
	redisConsumer.Stop()
	appLogger.Info("Trade event consumer exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "trade-event-consumer"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-simulation.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trade-event-consumer CLI: %s\n", err)
		os.Exit(1)
	}
}
