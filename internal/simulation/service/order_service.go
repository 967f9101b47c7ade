package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-paper-trader/internal/entity"
	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/metrics"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/pkg/common"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/ticker"
	"golang-paper-trader/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultOrderTimeout = 15 * time.Second

// PlaceOrderParams is an order as submitted by a client, before validation.
type PlaceOrderParams struct {
	UserID   int64
	Action   string
	Symbol   string
	Quantity int64
}

// OrderService executes simulated market orders against the ledger.
type OrderService interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*dto.OrderResult, error)
}

type orderService struct {
	log               *logger.Logger
	pricing           Pricing
	orderTimeout      time.Duration
	recentTradesLimit int
	transactor        repository.Transactor
	accountRepo       repository.AccountRepository
	positionRepo      repository.PositionRepository
	tradeRepo         repository.TradeRepository
	tradeEventRepo    repository.TradeEventRepository
	quoteService      QuoteService
	now               func() time.Time
	newRef            func() string
}

func NewOrderService(
	cfg *config.Config,
	log *logger.Logger,
	pricing Pricing,
	transactor repository.Transactor,
	accountRepo repository.AccountRepository,
	positionRepo repository.PositionRepository,
	tradeRepo repository.TradeRepository,
	tradeEventRepo repository.TradeEventRepository,
	quoteService QuoteService,
) OrderService {
	orderTimeout := cfg.Simulation.OrderTimeout
	if orderTimeout <= 0 {
		orderTimeout = defaultOrderTimeout
	}
	recentTradesLimit := cfg.Simulation.RecentTradesLimit
	if recentTradesLimit <= 0 {
		recentTradesLimit = defaultRecentTradesLimit
	}
	return &orderService{
		log:               log,
		pricing:           pricing,
		orderTimeout:      orderTimeout,
		recentTradesLimit: recentTradesLimit,
		transactor:        transactor,
		accountRepo:       accountRepo,
		positionRepo:      positionRepo,
		tradeRepo:         tradeRepo,
		tradeEventRepo:    tradeEventRepo,
		quoteService:      quoteService,
		now:               func() time.Time { return time.Now().UTC() },
		newRef:            uuid.NewString,
	}
}

// PlaceOrder validates the order, prices it from a live quote and applies it
// to the ledger in one transaction. Business failures come back as *Rejection
// with nothing committed.
func (s *orderService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*dto.OrderResult, error) {
	start := time.Now()
	params.Action = strings.ToUpper(strings.TrimSpace(params.Action))

	result, err := s.placeOrder(ctx, params)

	label := "executed"
	if err != nil {
		var rejection *Rejection
		if errors.As(err, &rejection) {
			label = rejection.Reason
		} else {
			label = "error"
		}
	}
	metricAction := params.Action
	if metricAction != common.ActionBuy && metricAction != common.ActionSell {
		metricAction = "invalid"
	}
	metrics.OrdersTotal.WithLabelValues(metricAction, label).Inc()
	metrics.OrderLatency.WithLabelValues(metricAction).Observe(time.Since(start).Seconds())

	return result, err
}

func (s *orderService) placeOrder(ctx context.Context, params PlaceOrderParams) (*dto.OrderResult, error) {
	symbol, validSymbol := ticker.Parse(params.Symbol)
	if params.UserID <= 0 ||
		(params.Action != common.ActionBuy && params.Action != common.ActionSell) ||
		!validSymbol ||
		params.Quantity <= 0 {
		return nil, ErrInvalidOrder
	}

	fields := []zap.Field{
		logger.Field("user_id", params.UserID),
		logger.StringField("action", params.Action),
		logger.StringField("symbol", symbol),
		logger.Field("quantity", params.Quantity),
	}

	// Quote first: a slow provider must never hold ledger locks.
	quote := s.quoteService.GetQuote(ctx, symbol)
	if !quote.HasPrice() {
		s.log.InfoContext(ctx, "Order rejected, no price", append(fields, logger.Field("quote_error", quote.Error))...)
		return nil, ErrPriceNotAvailable
	}

	price := roundPrice(decimal.NewFromFloat(*quote.Price))
	if !price.IsPositive() {
		return nil, ErrPriceNotAvailable
	}
	notional := notionalOf(price, params.Quantity)
	fee := s.pricing.Fee(notional)

	// Once locks are taken the transaction runs to commit or rollback even if the client goes away.
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.orderTimeout)
	defer cancel()

	var trade entity.SimTrade
	var account *entity.SimAccount
	err := s.transactor.WithinTransaction(txCtx, func(tx *gorm.DB) error {
		accountRepo := s.accountRepo.WithTx(tx)
		positionRepo := s.positionRepo.WithTx(tx)
		tradeRepo := s.tradeRepo.WithTx(tx)

		if err := accountRepo.Ensure(txCtx, params.UserID, s.pricing.OpeningCash); err != nil {
			return fmt.Errorf("ensure account: %w", err)
		}

		var err error
		account, err = accountRepo.LockByUserID(txCtx, params.UserID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %d missing after ensure", params.UserID)
		}

		position, err := positionRepo.Lock(txCtx, params.UserID, symbol)
		if err != nil {
			return fmt.Errorf("lock position: %w", err)
		}

		trade = entity.SimTrade{
			Ref:        s.newRef(),
			UserID:     params.UserID,
			ExecutedAt: s.now(),
			Action:     params.Action,
			Symbol:     symbol,
			Quantity:   params.Quantity,
			Price:      price,
			Total:      notional,
			Fee:        fee,
		}

		switch params.Action {
		case common.ActionBuy:
			err = s.applyBuy(txCtx, positionRepo, account, position, &trade)
		case common.ActionSell:
			err = s.applySell(txCtx, positionRepo, account, position, &trade)
		}
		if err != nil {
			return err
		}

		if err := accountRepo.UpdateBalances(txCtx, account); err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		if err := tradeRepo.Create(txCtx, &trade); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		return nil
	})
	if err != nil {
		var rejection *Rejection
		if errors.As(err, &rejection) {
			s.log.InfoContext(ctx, "Order rejected", append(fields, logger.StringField("reason", rejection.Reason))...)
			return nil, rejection
		}
		s.log.ErrorContext(ctx, "Failed to execute order", append(fields, logger.ErrorField(err))...)
		return nil, fmt.Errorf("failed to execute order: %w", err)
	}

	s.log.InfoContext(ctx, "Order executed", append(fields,
		logger.StringField("trade_ref", trade.Ref),
		logger.StringField("price", trade.Price.String()),
		logger.StringField("fee", trade.Fee.String()),
	)...)

	metrics.TradedNotional.WithLabelValues(params.Action).Add(notional.InexactFloat64())
	s.publishTradeExecuted(ctx, trade, account)

	snapshot, err := buildSnapshot(txCtx, params.UserID, s.recentTradesLimit, s.accountRepo, s.positionRepo, s.tradeRepo)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load portfolio after order", append(fields, logger.ErrorField(err))...)
		return nil, err
	}

	return &dto.OrderResult{
		Trade:    toTradeView(trade),
		Snapshot: snapshot,
	}, nil
}

// applyBuy debits cash and folds the buy into the position's average cost.
// The fee is capitalized into the cost basis.
func (s *orderService) applyBuy(ctx context.Context, positionRepo repository.PositionRepository, account *entity.SimAccount, position *entity.SimPosition, trade *entity.SimTrade) error {
	debit := trade.Total.Add(trade.Fee).Round(moneyScale)
	if debit.GreaterThan(account.CashBalance) {
		return ErrInsufficientCash
	}

	account.CashBalance = account.CashBalance.Sub(debit)
	account.FeesTotal = account.FeesTotal.Add(trade.Fee)

	if position == nil {
		newPosition := &entity.SimPosition{
			UserID:      trade.UserID,
			Symbol:      trade.Symbol,
			Quantity:    trade.Quantity,
			AverageCost: averageCostAfterBuy(0, decimal.Zero, trade.Total, trade.Fee, trade.Quantity),
		}
		if err := positionRepo.Create(ctx, newPosition); err != nil {
			return fmt.Errorf("create position: %w", err)
		}
		return nil
	}

	position.AverageCost = averageCostAfterBuy(position.Quantity, position.AverageCost, trade.Total, trade.Fee, trade.Quantity)
	position.Quantity += trade.Quantity
	if err := positionRepo.UpdateHolding(ctx, position); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

// applySell credits proceeds and books realized P&L against the average cost.
// The fee is expensed against the sale; the average cost is left untouched.
func (s *orderService) applySell(ctx context.Context, positionRepo repository.PositionRepository, account *entity.SimAccount, position *entity.SimPosition, trade *entity.SimTrade) error {
	if position == nil || trade.Quantity > position.Quantity {
		return ErrInsufficientQuantity
	}

	// Below the fee floor proceeds go negative; cash still may not.
	proceeds := trade.Total.Sub(trade.Fee).Round(moneyScale)
	if account.CashBalance.Add(proceeds).IsNegative() {
		return ErrInsufficientCash
	}
	realized := realizedOnSell(trade.Price, position.AverageCost, trade.Quantity, trade.Fee)

	account.CashBalance = account.CashBalance.Add(proceeds)
	account.RealizedPnL = account.RealizedPnL.Add(realized)
	account.FeesTotal = account.FeesTotal.Add(trade.Fee)
	trade.RealizedPnL = decimal.NewNullDecimal(realized)

	remaining := position.Quantity - trade.Quantity
	if remaining == 0 {
		if err := positionRepo.Delete(ctx, trade.UserID, trade.Symbol); err != nil {
			return fmt.Errorf("delete position: %w", err)
		}
		return nil
	}
	if err := positionRepo.UpdateQuantity(ctx, trade.UserID, trade.Symbol, remaining); err != nil {
		return fmt.Errorf("update position quantity: %w", err)
	}
	return nil
}

func (s *orderService) publishTradeExecuted(ctx context.Context, trade entity.SimTrade, account *entity.SimAccount) {
	event := dto.TradeExecutedEvent{
		Ref:         trade.Ref,
		TradeID:     trade.ID,
		UserID:      trade.UserID,
		Action:      trade.Action,
		Symbol:      trade.Symbol,
		Quantity:    trade.Quantity,
		Price:       trade.Price.String(),
		Total:       trade.Total.String(),
		Fee:         trade.Fee.String(),
		CashBalance: account.CashBalance.StringFixed(moneyScale),
		ExecutedAt:  trade.ExecutedAt,
	}
	if trade.RealizedPnL.Valid {
		event.RealizedPnL = utils.ToPointer(trade.RealizedPnL.Decimal.StringFixed(moneyScale))
	}

	utils.GoSafe(func() {
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.tradeEventRepo.PublishTradeExecuted(publishCtx, event); err != nil {
			s.log.Error("Failed to publish trade executed event",
				logger.ErrorField(err), logger.StringField("trade_ref", event.Ref))
		}
	})
}
