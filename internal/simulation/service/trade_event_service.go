package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/metrics"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/pkg/logger"
)

const (
	defaultTradeEventBatch   = 50
	defaultTradeEventBlock   = 2 * time.Second
	defaultTradeEventMaxIdle = time.Minute
)

// TradeEventService consumes executed trades and keeps the last traded
// price per symbol in Redis.
type TradeEventService interface {
	ProcessTradeEvents(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

type tradeEventService struct {
	cfg            *config.Config
	log            *logger.Logger
	streamRepo     repository.TradeEventStreamRepository
	tradeEventRepo repository.TradeEventRepository
}

func NewTradeEventService(
	cfg *config.Config,
	log *logger.Logger,
	streamRepo repository.TradeEventStreamRepository,
	tradeEventRepo repository.TradeEventRepository,
) TradeEventService {
	return &tradeEventService{
		cfg:            cfg,
		log:            log,
		streamRepo:     streamRepo,
		tradeEventRepo: tradeEventRepo,
	}
}

func (s *tradeEventService) batchSize() int64 {
	if s.cfg.TradeEvents.BatchSize <= 0 {
		return defaultTradeEventBatch
	}
	return s.cfg.TradeEvents.BatchSize
}

// ProcessTradeEvents handles one batch of new messages. Malformed messages
// are acknowledged and dropped; messages whose side effect failed stay
// pending until ProcessRetries claims them.
func (s *tradeEventService) ProcessTradeEvents(ctx context.Context) {
	block := s.cfg.TradeEvents.Block
	if block <= 0 {
		block = defaultTradeEventBlock
	}

	messages, err := s.streamRepo.Read(ctx, s.batchSize(), block)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.log.Error("Failed to read trade events", logger.ErrorField(err))
		return
	}

	s.ack(ctx, s.handleMessages(ctx, messages))
}

// ProcessRetries claims messages left pending longer than the configured max
// idle time and runs them through the same handling as new ones.
func (s *tradeEventService) ProcessRetries(ctx context.Context) {
	maxIdle := s.cfg.TradeEvents.MaxIdle
	if maxIdle <= 0 {
		maxIdle = defaultTradeEventMaxIdle
	}

	messages, err := s.streamRepo.Claim(ctx, maxIdle, s.batchSize())
	if err != nil {
		s.log.Error("Failed to claim pending trade events", logger.ErrorField(err))
		return
	}
	if len(messages) == 0 {
		s.log.Debug("Retry no pending trade events found")
		return
	}

	s.log.Info("Retrying pending trade events", logger.IntField("count", len(messages)))
	metrics.TradeEventsConsumed.WithLabelValues("retried").Add(float64(len(messages)))
	s.ack(ctx, s.handleMessages(ctx, messages))
}

// handleMessages returns the IDs that are done with, processed or dropped.
func (s *tradeEventService) handleMessages(ctx context.Context, messages []dto.StreamMessage) []string {
	ackIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		var event dto.TradeExecutedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil || event.Symbol == "" {
			s.log.Warn("Dropping malformed trade event", logger.StringField("message_id", msg.ID))
			metrics.TradeEventsConsumed.WithLabelValues("malformed").Inc()
			ackIDs = append(ackIDs, msg.ID)
			continue
		}

		price, err := strconv.ParseFloat(event.Price, 64)
		if err != nil {
			s.log.Warn("Dropping trade event with invalid price", logger.StringField("message_id", msg.ID), logger.StringField("price", event.Price))
			metrics.TradeEventsConsumed.WithLabelValues("malformed").Inc()
			ackIDs = append(ackIDs, msg.ID)
			continue
		}

		if err := s.tradeEventRepo.SetLastPrice(ctx, event.Symbol, price, event.ExecutedAt); err != nil {
			s.log.Error("Failed to store last traded price", logger.ErrorField(err), logger.StringField("trade_ref", event.Ref))
			metrics.TradeEventsConsumed.WithLabelValues("failed").Inc()
			continue
		}

		s.log.Debug("Trade event processed",
			logger.StringField("trade_ref", event.Ref),
			logger.StringField("symbol", event.Symbol),
			logger.StringField("action", event.Action))
		metrics.TradeEventsConsumed.WithLabelValues("ok").Inc()
		ackIDs = append(ackIDs, msg.ID)
	}
	return ackIDs
}

func (s *tradeEventService) ack(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.streamRepo.Ack(ctx, ids...); err != nil {
		s.log.Error("Failed to acknowledge trade events", logger.ErrorField(err), logger.IntField("count", len(ids)))
	}
}
