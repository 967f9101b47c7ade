package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt_Unmarshal(t *testing.T) {
	tests := []struct {
		raw   string
		value int64
		valid bool
	}{
		{`10`, 10, true},
		{`"10"`, 10, true},
		{`" 42 "`, 42, true},
		{`10.0`, 10, true},
		{`-3`, -3, true},
		{`2.5`, 0, false},
		{`"2.5"`, 0, false},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f FlexInt
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.valid, f.Valid)
			assert.Equal(t, tt.value, f.Int())
		})
	}
}

func TestPlaceOrderRequest_Decode(t *testing.T) {
	var req PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"7","action":"sell","symbol":"tsla","quantity":3}`), &req))
	assert.Equal(t, int64(7), req.UserID.Int())
	assert.Equal(t, "sell", req.Action)
	assert.Equal(t, "tsla", req.Symbol)
	assert.Equal(t, int64(3), req.Quantity.Int())

	var missing PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"action":"BUY"}`), &missing))
	assert.Zero(t, missing.UserID.Int())
	assert.Zero(t, missing.Quantity.Int())
}

func TestOrderMessage(t *testing.T) {
	assert.Equal(t, "BUY AAPL x10 @ 100.00", OrderMessage("BUY", "AAPL", 10, 100))
	assert.Equal(t, "SELL BRK.B x1 @ 412.35", OrderMessage("SELL", "BRK.B", 1, 412.345678))
}

func TestNewPortfolioResponse_DerivesLegacyMap(t *testing.T) {
	realized := decimal.NewNullDecimal(decimal.RequireFromString("223.31"))
	resp := NewPortfolioResponse(&PortfolioSnapshot{
		CashBalance: decimal.RequireFromString("9698.05"),
		RealizedPnL: decimal.RequireFromString("223.31"),
		FeesTotal:   decimal.RequireFromString("1.95"),
		Positions: []PositionView{
			{Symbol: "AAPL", Quantity: 5, AverageCost: decimal.RequireFromString("105.0525")},
			{Symbol: "MSFT", Quantity: 2, AverageCost: decimal.RequireFromString("400")},
		},
		RecentTrades: []TradeView{
			{ID: 3, Action: "SELL", Symbol: "AAPL", Quantity: 15, Price: decimal.NewFromInt(120), Total: decimal.NewFromInt(1800), Fee: decimal.RequireFromString("0.90"), RealizedPnL: realized},
		},
	})

	assert.Equal(t, 9698.05, resp.CashBalance)
	assert.Equal(t, 223.31, resp.RealizedPnL)
	assert.Equal(t, 1.95, resp.FeesTotal)
	assert.Equal(t, map[string]int64{"AAPL": 5, "MSFT": 2}, resp.Portfolio)
	require.Len(t, resp.Positions, 2)
	assert.Equal(t, 105.0525, resp.Positions[0].AvgCost)
	require.Len(t, resp.History, 1)
	assert.Equal(t, "3", resp.History[0].ID)
	require.NotNil(t, resp.History[0].RealizedPnL)
	assert.Equal(t, 223.31, *resp.History[0].RealizedPnL)
}

func TestNewPortfolioResponse_EmptyListsNotNull(t *testing.T) {
	resp := NewPortfolioResponse(&PortfolioSnapshot{})
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cash_balance":0,"realized_pnl":0,"fees_total":0,"portfolio":{},"positions":[],"history":[]}`, string(out))
}
