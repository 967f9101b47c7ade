package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is the service-level view of an account. Amounts stay
// decimal until they reach the HTTP boundary.
type PortfolioSnapshot struct {
	UserID       int64
	CashBalance  decimal.Decimal
	RealizedPnL  decimal.Decimal
	FeesTotal    decimal.Decimal
	Positions    []PositionView
	RecentTrades []TradeView
}

type PositionView struct {
	Symbol      string
	Quantity    int64
	AverageCost decimal.Decimal
}

type TradeView struct {
	ID          int64
	Ref         string
	ExecutedAt  time.Time
	Action      string
	Symbol      string
	Quantity    int64
	Price       decimal.Decimal
	Total       decimal.Decimal
	Fee         decimal.Decimal
	RealizedPnL decimal.NullDecimal
}

// OrderResult is what an executed order returns: the trade and the portfolio after it.
type OrderResult struct {
	Trade    TradeView
	Snapshot *PortfolioSnapshot
}

// PortfolioResponse is the JSON shape consumed by the app.
type PortfolioResponse struct {
	CashBalance float64            `json:"cash_balance"`
	RealizedPnL float64            `json:"realized_pnl"`
	FeesTotal   float64            `json:"fees_total"`
	Portfolio   map[string]int64   `json:"portfolio"`
	Positions   []PositionResponse `json:"positions"`
	History     []TradeResponse    `json:"history"`
}

type PositionResponse struct {
	Symbol  string  `json:"symbol"`
	Qty     int64   `json:"qty"`
	AvgCost float64 `json:"avg_cost"`
}

type TradeResponse struct {
	ID          string    `json:"id"`
	Ts          time.Time `json:"ts"`
	Action      string    `json:"action"`
	Symbol      string    `json:"symbol"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	Total       float64   `json:"total"`
	Fee         float64   `json:"fee"`
	RealizedPnL *float64  `json:"realized_pnl"`
}

// NewPortfolioResponse converts a snapshot for the wire. The legacy
// symbol->quantity map is derived here from the position list.
func NewPortfolioResponse(s *PortfolioSnapshot) PortfolioResponse {
	resp := PortfolioResponse{
		CashBalance: s.CashBalance.InexactFloat64(),
		RealizedPnL: s.RealizedPnL.InexactFloat64(),
		FeesTotal:   s.FeesTotal.InexactFloat64(),
		Portfolio:   make(map[string]int64, len(s.Positions)),
		Positions:   make([]PositionResponse, 0, len(s.Positions)),
		History:     make([]TradeResponse, 0, len(s.RecentTrades)),
	}

	for _, p := range s.Positions {
		resp.Portfolio[p.Symbol] = p.Quantity
		resp.Positions = append(resp.Positions, PositionResponse{
			Symbol:  p.Symbol,
			Qty:     p.Quantity,
			AvgCost: p.AverageCost.InexactFloat64(),
		})
	}

	for _, t := range s.RecentTrades {
		resp.History = append(resp.History, NewTradeResponse(t))
	}

	return resp
}

func NewTradeResponse(t TradeView) TradeResponse {
	tr := TradeResponse{
		ID:       strconv.FormatInt(t.ID, 10),
		Ts:       t.ExecutedAt,
		Action:   t.Action,
		Symbol:   t.Symbol,
		Quantity: t.Quantity,
		Price:    t.Price.InexactFloat64(),
		Total:    t.Total.InexactFloat64(),
		Fee:      t.Fee.InexactFloat64(),
	}
	if t.RealizedPnL.Valid {
		v := t.RealizedPnL.Decimal.InexactFloat64()
		tr.RealizedPnL = &v
	}
	return tr
}
