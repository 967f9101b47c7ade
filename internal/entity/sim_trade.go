package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimTrade is one executed order. Rows are append-only.
type SimTrade struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Ref         string              `gorm:"type:varchar(36);uniqueIndex;not null" json:"ref"`
	UserID      int64               `gorm:"not null;index:idx_sim_trades_user_executed,priority:1" json:"user_id"`
	ExecutedAt  time.Time           `gorm:"not null;index:idx_sim_trades_user_executed,priority:2,sort:desc" json:"executed_at"`
	Action      string              `gorm:"type:varchar(4);not null" json:"action"`
	Symbol      string              `gorm:"type:varchar(16);not null" json:"symbol"`
	Quantity    int64               `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal     `gorm:"type:numeric(20,6);not null" json:"price"`
	Total       decimal.Decimal     `gorm:"type:numeric(20,4);not null" json:"total"`
	Fee         decimal.Decimal     `gorm:"type:numeric(20,2);not null" json:"fee"`
	RealizedPnL decimal.NullDecimal `gorm:"column:realized_pnl;type:numeric(20,2)" json:"realized_pnl"`
}

func (SimTrade) TableName() string {
	return "sim_trades"
}
