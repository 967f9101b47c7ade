package repository

import (
	"context"

	"golang-paper-trader/internal/entity"

	"gorm.io/gorm"
)

// TradeRepository defines data operations on the append-only trade log.
type TradeRepository interface {
	WithTx(tx *gorm.DB) TradeRepository
	Create(ctx context.Context, trade *entity.SimTrade) error
	ListRecentByUserID(ctx context.Context, userID int64, limit int) ([]entity.SimTrade, error)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) WithTx(tx *gorm.DB) TradeRepository {
	return &tradeRepository{db: tx}
}

func (r *tradeRepository) Create(ctx context.Context, trade *entity.SimTrade) error {
	return r.db.WithContext(ctx).Create(trade).Error
}

// ListRecentByUserID returns the newest trades first, at most limit rows.
func (r *tradeRepository) ListRecentByUserID(ctx context.Context, userID int64, limit int) ([]entity.SimTrade, error) {
	var trades []entity.SimTrade
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}
