package repository

import (
	"context"
	"errors"

	"golang-paper-trader/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PositionRepository defines data operations on open positions.
type PositionRepository interface {
	WithTx(tx *gorm.DB) PositionRepository
	Lock(ctx context.Context, userID int64, symbol string) (*entity.SimPosition, error)
	ListByUserID(ctx context.Context, userID int64) ([]entity.SimPosition, error)
	Create(ctx context.Context, position *entity.SimPosition) error
	UpdateHolding(ctx context.Context, position *entity.SimPosition) error
	UpdateQuantity(ctx context.Context, userID int64, symbol string, quantity int64) error
	Delete(ctx context.Context, userID int64, symbol string) error
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) WithTx(tx *gorm.DB) PositionRepository {
	return &positionRepository{db: tx}
}

// Lock reads the (user, symbol) position with SELECT ... FOR UPDATE.
// A missing position yields nil, nil.
func (r *positionRepository) Lock(ctx context.Context, userID int64, symbol string) (*entity.SimPosition, error) {
	var position entity.SimPosition
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// ListByUserID returns the open positions of a user sorted by symbol.
func (r *positionRepository) ListByUserID(ctx context.Context, userID int64) ([]entity.SimPosition, error) {
	var positions []entity.SimPosition
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quantity > 0", userID).
		Order("symbol ASC").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) Create(ctx context.Context, position *entity.SimPosition) error {
	return r.db.WithContext(ctx).Create(position).Error
}

// UpdateHolding writes both quantity and average cost. Used by buys only.
func (r *positionRepository) UpdateHolding(ctx context.Context, position *entity.SimPosition) error {
	return r.db.WithContext(ctx).
		Model(&entity.SimPosition{}).
		Where("user_id = ? AND symbol = ?", position.UserID, position.Symbol).
		Updates(map[string]interface{}{
			"quantity":     position.Quantity,
			"average_cost": position.AverageCost,
		}).Error
}

// UpdateQuantity changes the quantity and leaves the average cost untouched.
func (r *positionRepository) UpdateQuantity(ctx context.Context, userID int64, symbol string, quantity int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.SimPosition{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Update("quantity", quantity).Error
}

func (r *positionRepository) Delete(ctx context.Context, userID int64, symbol string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&entity.SimPosition{}).Error
}
