package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang-paper-trader/internal/entity"
	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/dto"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/pkg/logger"
	"golang-paper-trader/pkg/sqlite"
	"golang-paper-trader/pkg/ticker"
	"golang-paper-trader/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeQuoteService struct {
	mu     sync.Mutex
	prices map[string]float64
	calls  int
}

func newFakeQuoteService() *fakeQuoteService {
	return &fakeQuoteService{prices: map[string]float64{}}
}

func (f *fakeQuoteService) set(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
}

func (f *fakeQuoteService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeQuoteService) GetQuote(_ context.Context, input string) dto.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	symbol, ok := ticker.Parse(input)
	if !ok {
		return failedQuote(symbol, QuoteErrInvalidSymbol)
	}
	price, found := f.prices[symbol]
	if !found {
		return failedQuote(symbol, QuoteErrFetchFailed)
	}
	return dto.Quote{Symbol: symbol, Price: utils.ToPointer(price), Currency: "USD"}
}

type recordingEventRepo struct {
	mu     sync.Mutex
	events []dto.TradeExecutedEvent
}

func (r *recordingEventRepo) PublishTradeExecuted(_ context.Context, event dto.TradeExecutedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEventRepo) SetLastPrice(context.Context, string, float64, time.Time) error {
	return nil
}

func (r *recordingEventRepo) published() []dto.TradeExecutedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dto.TradeExecutedEvent(nil), r.events...)
}

type testEnv struct {
	db        *gorm.DB
	quotes    *fakeQuoteService
	events    *recordingEventRepo
	orders    *orderService
	portfolio PortfolioService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:", "silent")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.SimAccount{}, &entity.SimPosition{}, &entity.SimTrade{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	db := newTestDB(t)
	log := logger.NewNop()

	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	quotes := newFakeQuoteService()
	events := &recordingEventRepo{}

	orders := NewOrderService(cfg, log, DefaultPricing, repository.NewTransactor(db),
		accountRepo, positionRepo, tradeRepo, events, quotes).(*orderService)

	// Strictly increasing clock so trade ordering is deterministic.
	var mu sync.Mutex
	clock := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	orders.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	return &testEnv{
		db:        db,
		quotes:    quotes,
		events:    events,
		orders:    orders,
		portfolio: NewPortfolioService(log, DefaultPricing, cfg.Simulation.RecentTradesLimit, accountRepo, positionRepo, tradeRepo),
	}
}

func (e *testEnv) place(t *testing.T, userID int64, action, symbol string, qty int64) (*dto.OrderResult, error) {
	t.Helper()
	return e.orders.PlaceOrder(context.Background(), PlaceOrderParams{
		UserID:   userID,
		Action:   action,
		Symbol:   symbol,
		Quantity: qty,
	})
}

func (e *testEnv) tradeCount(t *testing.T, userID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&entity.SimTrade{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	w := decimal.RequireFromString(want)
	assert.Truef(t, w.Equal(got), "want %s, got %s %v", w.String(), got.String(), msgAndArgs)
}

func findPosition(s *dto.PortfolioSnapshot, symbol string) *dto.PositionView {
	for i := range s.Positions {
		if s.Positions[i].Symbol == symbol {
			return &s.Positions[i]
		}
	}
	return nil
}

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)
