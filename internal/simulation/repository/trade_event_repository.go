package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/pkg/common"

	goRedis "github.com/redis/go-redis/v9"
)

const lastPriceTTL = 24 * time.Hour

// TradeEventRepository publishes executed trades and last prices to Redis.
type TradeEventRepository interface {
	PublishTradeExecuted(ctx context.Context, event dto.TradeExecutedEvent) error
	SetLastPrice(ctx context.Context, symbol string, price float64, at time.Time) error
}

type tradeEventRepository struct {
	redisClient  *goRedis.Client
	streamMaxLen int64
}

// NewTradeEventRepository returns a publisher backed by redisClient. A nil
// client yields a publisher that drops everything, for runs without Redis.
func NewTradeEventRepository(redisClient *goRedis.Client, streamMaxLen int64) TradeEventRepository {
	if redisClient == nil {
		return noopTradeEventRepository{}
	}
	return &tradeEventRepository{
		redisClient:  redisClient,
		streamMaxLen: streamMaxLen,
	}
}

func (r *tradeEventRepository) PublishTradeExecuted(ctx context.Context, event dto.TradeExecutedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal trade event: %w", err)
	}

	args := &goRedis.XAddArgs{
		Stream: common.RedisStreamTradeExecuted,
		Values: map[string]interface{}{"payload": payload},
	}
	if r.streamMaxLen > 0 {
		args.MaxLen = r.streamMaxLen
		args.Approx = true
	}

	return r.redisClient.XAdd(ctx, args).Err()
}

func (r *tradeEventRepository) SetLastPrice(ctx context.Context, symbol string, price float64, at time.Time) error {
	key := fmt.Sprintf(common.RedisKeyLastPrice, symbol)
	redisPipe := r.redisClient.Pipeline()
	redisPipe.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": at.Unix(),
	})
	redisPipe.Expire(ctx, key, lastPriceTTL)
	_, err := redisPipe.Exec(ctx)
	return err
}

type noopTradeEventRepository struct{}

func (noopTradeEventRepository) PublishTradeExecuted(context.Context, dto.TradeExecutedEvent) error {
	return nil
}

func (noopTradeEventRepository) SetLastPrice(context.Context, string, float64, time.Time) error {
	return nil
}
