package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) PlaceOrder(ctx context.Context, params service.PlaceOrderParams) (*dto.OrderResult, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*dto.OrderResult)
	return res, args.Error(1)
}

type mockPortfolioService struct{ mock.Mock }

func (m *mockPortfolioService) EnsureAccount(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockPortfolioService) GetSnapshot(ctx context.Context, userID int64) (*dto.PortfolioSnapshot, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*dto.PortfolioSnapshot)
	return res, args.Error(1)
}

type mockQuoteService struct{ mock.Mock }

func (m *mockQuoteService) GetQuote(ctx context.Context, input string) dto.Quote {
	return m.Called(ctx, input).Get(0).(dto.Quote)
}

type handlerFixture struct {
	echo      *echo.Echo
	orders    *mockOrderService
	portfolio *mockPortfolioService
	quotes    *mockQuoteService
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		echo:      echo.New(),
		orders:    &mockOrderService{},
		portfolio: &mockPortfolioService{},
		quotes:    &mockQuoteService{},
	}
	f.echo.Use(middleware.RequestID())
	f.echo.Use(ContextRequestID())
	h := NewSimulationHandler(f.orders, f.portfolio, f.quotes, logger.NewNop())
	h.RegisterRoutes(f.echo.Group("/simulation"))
	f.echo.GET("/health", Health("ok"))
	return f
}

func (f *handlerFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func sampleSnapshot() *dto.PortfolioSnapshot {
	return &dto.PortfolioSnapshot{
		UserID:      1,
		CashBalance: decimal.RequireFromString("8999.50"),
		RealizedPnL: decimal.Zero,
		FeesTotal:   decimal.RequireFromString("0.50"),
		Positions: []dto.PositionView{
			{Symbol: "AAPL", Quantity: 10, AverageCost: decimal.RequireFromString("100.05")},
		},
		RecentTrades: []dto.TradeView{{
			ID:         17,
			Ref:        "4a0f3c62-8f0e-4b43-9a49-3f7c1c0e8a11",
			ExecutedAt: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
			Action:     "BUY",
			Symbol:     "AAPL",
			Quantity:   10,
			Price:      decimal.NewFromInt(100),
			Total:      decimal.NewFromInt(1000),
			Fee:        decimal.RequireFromString("0.50"),
		}},
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newHandlerFixture()
	snap := sampleSnapshot()
	f.orders.On("PlaceOrder", mock.Anything, service.PlaceOrderParams{
		UserID: 1, Action: "buy", Symbol: "aapl", Quantity: 10,
	}).Return(&dto.OrderResult{Trade: snap.RecentTrades[0], Snapshot: snap}, nil).Once()

	rec := f.do(http.MethodPost, "/simulation/order", `{"userId":"1","action":"buy","symbol":"aapl","quantity":10}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BUY AAPL x10 @ 100.00", body["message"])
	assert.Equal(t, snap.RecentTrades[0].Ref, body["trade_ref"])
	assert.Equal(t, 8999.5, body["cash_balance"])
	assert.Equal(t, 0.5, body["fees_total"])
	assert.Equal(t, map[string]interface{}{"AAPL": float64(10)}, body["portfolio"])

	positions := body["positions"].([]interface{})
	require.Len(t, positions, 1)
	assert.Equal(t, map[string]interface{}{"symbol": "AAPL", "qty": float64(10), "avg_cost": 100.05}, positions[0])

	history := body["history"].([]interface{})
	require.Len(t, history, 1)
	trade := history[0].(map[string]interface{})
	assert.Equal(t, "17", trade["id"])
	assert.Nil(t, trade["realized_pnl"])
	assert.Equal(t, "2024-01-02T15:00:00Z", trade["ts"])
	f.orders.AssertExpectations(t)
}

func TestPlaceOrder_Rejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid", service.ErrInvalidOrder},
		{"no price", service.ErrPriceNotAvailable},
		{"cash", service.ErrInsufficientCash},
		{"quantity", service.ErrInsufficientQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := f.do(http.MethodPost, "/simulation/order", `{"userId":1,"action":"SELL","symbol":"AAPL","quantity":1}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.err.Error()+`"}`, rec.Body.String())
		})
	}
}

func TestPlaceOrder_InternalError(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked")).Once()

	rec := f.do(http.MethodPost, "/simulation/order", `{"userId":1,"action":"BUY","symbol":"AAPL","quantity":1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to process order"}`, rec.Body.String())
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/simulation/order", `{"userId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid order payload"}`, rec.Body.String())
	f.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestPlaceOrder_NonIntegerQuantityPassesZero(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("PlaceOrder", mock.Anything, service.PlaceOrderParams{
		UserID: 1, Action: "BUY", Symbol: "AAPL", Quantity: 0,
	}).Return(nil, service.ErrInvalidOrder).Once()

	rec := f.do(http.MethodPost, "/simulation/order", `{"userId":1,"action":"BUY","symbol":"AAPL","quantity":"2.5"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertExpectations(t)
}

func TestGetPortfolio(t *testing.T) {
	f := newHandlerFixture()
	f.portfolio.On("GetSnapshot", mock.Anything, int64(1)).Return(sampleSnapshot(), nil).Once()

	rec := f.do(http.MethodGet, "/simulation/portfolio/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.PortfolioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 8999.5, body.CashBalance)
	assert.Equal(t, map[string]int64{"AAPL": 10}, body.Portfolio)
	require.Len(t, body.History, 1)
	f.portfolio.AssertExpectations(t)
}

func TestGetPortfolio_BadUserID(t *testing.T) {
	f := newHandlerFixture()

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		rec := f.do(http.MethodGet, "/simulation/portfolio/"+id, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
	f.portfolio.AssertNotCalled(t, "GetSnapshot", mock.Anything, mock.Anything)
}

func TestGetPortfolio_StoreFailure(t *testing.T) {
	f := newHandlerFixture()
	f.portfolio.On("GetSnapshot", mock.Anything, int64(2)).Return(nil, errors.New("connection refused")).Once()

	rec := f.do(http.MethodGet, "/simulation/portfolio/2", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to load portfolio"}`, rec.Body.String())
}

func TestGetPrice(t *testing.T) {
	f := newHandlerFixture()
	f.quotes.On("GetQuote", mock.Anything, "aapl").Return(dto.Quote{Symbol: "AAPL", Price: utils.ToPointer(189.5), Currency: "USD"}).Once()
	f.quotes.On("GetQuote", mock.Anything, "xyz").Return(dto.Quote{Symbol: "XYZ", Error: utils.ToPointer(service.QuoteErrNoPrice)}).Once()
	f.quotes.On("GetQuote", mock.Anything, "").Return(dto.Quote{Error: utils.ToPointer(service.QuoteErrInvalidSymbol)}).Once()

	rec := f.do(http.MethodGet, "/simulation/price?symbol=aapl", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price":189.5,"error":null}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/simulation/price?symbol=xyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price":null,"error":"No regularMarketPrice"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/simulation/price", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"price":null,"error":"Invalid symbol"}`, rec.Body.String())
}

func TestGetQuote(t *testing.T) {
	f := newHandlerFixture()
	f.quotes.On("GetQuote", mock.Anything, "msft").Return(dto.Quote{
		Symbol:   "MSFT",
		Price:    utils.ToPointer(410.0),
		Currency: "USD",
		PERatio:  utils.ToPointer(35.2),
	}).Once()

	rec := f.do(http.MethodGet, "/simulation/quote?symbol=msft", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"MSFT","price":410,"currency":"USD","peRatio":35.2,"forwardPE":null,"marketCap":null,"error":null}`, rec.Body.String())
}

func TestContextRequestID(t *testing.T) {
	f := newHandlerFixture()
	var seen string
	f.portfolio.On("GetSnapshot", mock.Anything, int64(3)).Run(func(args mock.Arguments) {
		seen, _ = args.Get(0).(context.Context).Value(logger.RequestIDKey).(string)
	}).Return(sampleSnapshot(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/simulation/portfolio/3", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", seen)
}

func TestHealth(t *testing.T) {
	f := newHandlerFixture()
	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"message":"ok"}`, rec.Body.String())
}
