package consumer

import (
	"context"
	"sync"
	"time"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/common"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/utils"
)

// RedisConsumer drives the trade stream handlers until stopped.
type RedisConsumer struct {
	cfg               *config.Config
	tradeEventService service.TradeEventService
	logger            *logger.Logger
	stopChan          chan struct{}
	stopOnce          sync.Once
	wg                sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	tradeEventService service.TradeEventService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:               cfg,
		tradeEventService: tradeEventService,
		logger:            log,
		stopChan:          make(chan struct{}),
	}
}

// Start begins the consumer's processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.tradeEventService.ProcessTradeEvents, common.RedisStreamTradeExecuted, c.cfg.TradeEvents.HandlerTimeout)

	// handle retry
	c.RegisterTickerHandler(ctx, c.tradeEventService.ProcessRetries, c.cfg.TradeEvents.RetryInterval, c.cfg.TradeEvents.HandlerTimeout, common.RedisStreamTradeExecuted+"-retry")
}

// RegisterStreamHandler calls fn in a loop, each call bounded by timeout.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName), logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation", logger.Field("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping", logger.Field("stream", streamName))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// RegisterTickerHandler calls fn every interval, each call bounded by timeout.
func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop signals the handlers and waits for the in-flight batch to finish.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
