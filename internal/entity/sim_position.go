package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimPosition is an open holding. A row only exists while Quantity > 0.
type SimPosition struct {
	UserID      int64           `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Symbol      string          `gorm:"primaryKey;type:varchar(16)" json:"symbol"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	AverageCost decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"average_cost"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SimPosition) TableName() string {
	return "sim_positions"
}
