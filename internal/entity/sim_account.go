package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimAccount is the simulated cash account of one user.
type SimAccount struct {
	UserID      int64           `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CashBalance decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"cash_balance"`
	RealizedPnL decimal.Decimal `gorm:"column:realized_pnl;type:numeric(20,2);not null;default:0" json:"realized_pnl"`
	FeesTotal   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"fees_total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SimAccount) TableName() string {
	return "sim_accounts"
}
