package dto

import "time"

// TradeExecutedEvent is published to the trade stream after an order commits.
type TradeExecutedEvent struct {
	Ref         string    `json:"ref"`
	TradeID     int64     `json:"trade_id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	Symbol      string    `json:"symbol"`
	Quantity    int64     `json:"quantity"`
	Price       string    `json:"price"`
	Total       string    `json:"total"`
	Fee         string    `json:"fee"`
	RealizedPnL *string   `json:"realized_pnl"`
	CashBalance string    `json:"cash_balance"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// StreamMessage is one raw entry read from a Redis stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}
