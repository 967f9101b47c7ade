package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/pkg/common"

	goRedis "github.com/redis/go-redis/v9"
)

// TradeEventStreamRepository reads the trade stream through a consumer group.
type TradeEventStreamRepository interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, count int64, block time.Duration) ([]dto.StreamMessage, error)
	Claim(ctx context.Context, minIdle time.Duration, count int64) ([]dto.StreamMessage, error)
	Ack(ctx context.Context, ids ...string) error
}

type tradeEventStreamRepository struct {
	redisClient *goRedis.Client
	consumer    string
}

func NewTradeEventStreamRepository(redisClient *goRedis.Client, consumer string) TradeEventStreamRepository {
	return &tradeEventStreamRepository{
		redisClient: redisClient,
		consumer:    consumer,
	}
}

// EnsureGroup creates the consumer group (and the stream) if they do not exist.
func (r *tradeEventStreamRepository) EnsureGroup(ctx context.Context) error {
	err := r.redisClient.XGroupCreateMkStream(ctx, common.RedisStreamTradeExecuted, common.RedisStreamGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Read returns up to count new messages, waiting at most block. An idle
// stream yields nil, nil.
func (r *tradeEventStreamRepository) Read(ctx context.Context, count int64, block time.Duration) ([]dto.StreamMessage, error) {
	streams, err := r.redisClient.XReadGroup(ctx, &goRedis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: r.consumer,
		Streams:  []string{common.RedisStreamTradeExecuted, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var messages []dto.StreamMessage
	for _, stream := range streams {
		messages = append(messages, toStreamMessages(stream.Messages)...)
	}
	return messages, nil
}

// Claim takes over up to count messages that have been pending in the group
// for at least minIdle, whichever consumer they were delivered to.
func (r *tradeEventStreamRepository) Claim(ctx context.Context, minIdle time.Duration, count int64) ([]dto.StreamMessage, error) {
	msgs, _, err := r.redisClient.XAutoClaim(ctx, &goRedis.XAutoClaimArgs{
		Stream:   common.RedisStreamTradeExecuted,
		Group:    common.RedisStreamGroup,
		Consumer: r.consumer + "-retry",
		MinIdle:  minIdle,
		Start:    "0",
		Count:    count,
	}).Result()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return toStreamMessages(msgs), nil
}

func (r *tradeEventStreamRepository) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.redisClient.XAck(ctx, common.RedisStreamTradeExecuted, common.RedisStreamGroup, ids...).Err()
}

func toStreamMessages(msgs []goRedis.XMessage) []dto.StreamMessage {
	messages := make([]dto.StreamMessage, 0, len(msgs))
	for _, msg := range msgs {
		m := dto.StreamMessage{ID: msg.ID}
		switch payload := msg.Values["payload"].(type) {
		case string:
			m.Payload = []byte(payload)
		case []byte:
			m.Payload = payload
		}
		messages = append(messages, m)
	}
	return messages
}
