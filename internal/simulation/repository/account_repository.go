package repository

import (
	"context"
	"errors"

	"golang-paper-trader/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines data operations on simulated cash accounts.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	Ensure(ctx context.Context, userID int64, openingCash decimal.Decimal) error
	FindByUserID(ctx context.Context, userID int64) (*entity.SimAccount, error)
	LockByUserID(ctx context.Context, userID int64) (*entity.SimAccount, error)
	UpdateBalances(ctx context.Context, account *entity.SimAccount) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepository{db: tx}
}

// Ensure inserts the account with the opening balance unless it already exists.
func (r *accountRepository) Ensure(ctx context.Context, userID int64, openingCash decimal.Decimal) error {
	account := entity.SimAccount{
		UserID:      userID,
		CashBalance: openingCash,
		RealizedPnL: decimal.Zero,
		FeesTotal:   decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&account).Error
}

func (r *accountRepository) FindByUserID(ctx context.Context, userID int64) (*entity.SimAccount, error) {
	var account entity.SimAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// LockByUserID reads the account with SELECT ... FOR UPDATE. Only meaningful inside a transaction.
func (r *accountRepository) LockByUserID(ctx context.Context, userID int64) (*entity.SimAccount, error) {
	var account entity.SimAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) UpdateBalances(ctx context.Context, account *entity.SimAccount) error {
	result := r.db.WithContext(ctx).
		Model(&entity.SimAccount{}).
		Where("user_id = ?", account.UserID).
		Updates(map[string]interface{}{
			"cash_balance": account.CashBalance,
			"realized_pnl": account.RealizedPnL,
			"fees_total":   account.FeesTotal,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
