package service

import (
	"context"
	"fmt"

	"golang-paper-trader/internal/entity"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/pkg/logger"
)

const defaultRecentTradesLimit = 100

// PortfolioService provisions accounts and builds portfolio snapshots.
type PortfolioService interface {
	EnsureAccount(ctx context.Context, userID int64) error
	GetSnapshot(ctx context.Context, userID int64) (*dto.PortfolioSnapshot, error)
}

type portfolioService struct {
	log               *logger.Logger
	pricing           Pricing
	recentTradesLimit int
	accountRepo       repository.AccountRepository
	positionRepo      repository.PositionRepository
	tradeRepo         repository.TradeRepository
}

func NewPortfolioService(
	log *logger.Logger,
	pricing Pricing,
	recentTradesLimit int,
	accountRepo repository.AccountRepository,
	positionRepo repository.PositionRepository,
	tradeRepo repository.TradeRepository,
) PortfolioService {
	if recentTradesLimit <= 0 {
		recentTradesLimit = defaultRecentTradesLimit
	}
	return &portfolioService{
		log:               log,
		pricing:           pricing,
		recentTradesLimit: recentTradesLimit,
		accountRepo:       accountRepo,
		positionRepo:      positionRepo,
		tradeRepo:         tradeRepo,
	}
}

// EnsureAccount creates the account with the opening balance if it is absent.
// Concurrent callers never create duplicates.
func (s *portfolioService) EnsureAccount(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidOrder
	}
	if err := s.accountRepo.Ensure(ctx, userID, s.pricing.OpeningCash); err != nil {
		return fmt.Errorf("failed to ensure account %d: %w", userID, err)
	}
	return nil
}

// GetSnapshot provisions the account if needed and reads cash, positions and recent trades.
func (s *portfolioService) GetSnapshot(ctx context.Context, userID int64) (*dto.PortfolioSnapshot, error) {
	if err := s.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	return buildSnapshot(ctx, userID, s.recentTradesLimit, s.accountRepo, s.positionRepo, s.tradeRepo)
}

func buildSnapshot(
	ctx context.Context,
	userID int64,
	limit int,
	accountRepo repository.AccountRepository,
	positionRepo repository.PositionRepository,
	tradeRepo repository.TradeRepository,
) (*dto.PortfolioSnapshot, error) {
	account, err := accountRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d not found after provisioning", userID)
	}

	positions, err := positionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions for %d: %w", userID, err)
	}

	trades, err := tradeRepo.ListRecentByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for %d: %w", userID, err)
	}

	snapshot := &dto.PortfolioSnapshot{
		UserID:       userID,
		CashBalance:  account.CashBalance,
		RealizedPnL:  account.RealizedPnL,
		FeesTotal:    account.FeesTotal,
		Positions:    make([]dto.PositionView, 0, len(positions)),
		RecentTrades: make([]dto.TradeView, 0, len(trades)),
	}
	for _, p := range positions {
		snapshot.Positions = append(snapshot.Positions, dto.PositionView{
			Symbol:      p.Symbol,
			Quantity:    p.Quantity,
			AverageCost: p.AverageCost,
		})
	}
	for _, t := range trades {
		snapshot.RecentTrades = append(snapshot.RecentTrades, toTradeView(t))
	}
	return snapshot, nil
}

func toTradeView(t entity.SimTrade) dto.TradeView {
	return dto.TradeView{
		ID:          t.ID,
		Ref:         t.Ref,
		ExecutedAt:  t.ExecutedAt,
		Action:      t.Action,
		Symbol:      t.Symbol,
		Quantity:    t.Quantity,
		Price:       t.Price,
		Total:       t.Total,
		Fee:         t.Fee,
		RealizedPnL: t.RealizedPnL,
	}
}
