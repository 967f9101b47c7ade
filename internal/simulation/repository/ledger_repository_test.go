package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang-paper-trader/internal/entity"
	"golang-paper-trader/pkg/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

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

func TestAccountRepository_EnsureIsInsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Ensure(ctx, 1, decimal.RequireFromString("10000.00")))
	require.NoError(t, repo.Ensure(ctx, 1, decimal.RequireFromString("5.00")))

	account, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.CashBalance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, account.RealizedPnL.IsZero())

	missing, err := repo.FindByUserID(ctx, 2)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountRepository_UpdateBalancesInTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Ensure(ctx, 1, decimal.NewFromInt(100)))

	err := NewTransactor(db).WithinTransaction(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		account, err := txRepo.LockByUserID(ctx, 1)
		require.NoError(t, err)
		account.CashBalance = decimal.RequireFromString("42.42")
		account.FeesTotal = decimal.RequireFromString("0.50")
		return txRepo.UpdateBalances(ctx, account)
	})
	require.NoError(t, err)

	account, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "42.42", account.CashBalance.StringFixed(2))
	assert.Equal(t, "0.50", account.FeesTotal.StringFixed(2))

	assert.ErrorIs(t, repo.UpdateBalances(ctx, &entity.SimAccount{UserID: 99}), gorm.ErrRecordNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepository(db)
	positions := NewPositionRepository(db)
	ctx := context.Background()

	err := NewTransactor(db).WithinTransaction(ctx, func(tx *gorm.DB) error {
		require.NoError(t, accounts.WithTx(tx).Ensure(ctx, 3, decimal.NewFromInt(10)))
		require.NoError(t, positions.WithTx(tx).Create(ctx, &entity.SimPosition{
			UserID: 3, Symbol: "AAPL", Quantity: 1, AverageCost: decimal.NewFromInt(1),
		}))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	account, err := accounts.FindByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, account)

	held, err := positions.ListByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestPositionRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPositionRepository(db)
	ctx := context.Background()

	pos, err := repo.Lock(ctx, 1, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, pos)

	for _, s := range []string{"MSFT", "AAPL"} {
		require.NoError(t, repo.Create(ctx, &entity.SimPosition{
			UserID: 1, Symbol: s, Quantity: 10, AverageCost: decimal.RequireFromString("100.05"),
		}))
	}

	require.NoError(t, repo.UpdateQuantity(ctx, 1, "MSFT", 4))
	pos, err = repo.Lock(ctx, 1, "MSFT")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(4), pos.Quantity)
	assert.Equal(t, "100.05", pos.AverageCost.String())

	pos.Quantity = 12
	pos.AverageCost = decimal.RequireFromString("101.123456")
	require.NoError(t, repo.UpdateHolding(ctx, pos))

	list, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol)
	assert.Equal(t, "MSFT", list[1].Symbol)
	assert.Equal(t, int64(12), list[1].Quantity)
	assert.Equal(t, "101.123456", list[1].AverageCost.String())

	require.NoError(t, repo.Delete(ctx, 1, "AAPL"))
	list, err = repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MSFT", list[0].Symbol)
}

func TestTradeRepository_ListRecentNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewTradeRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	refs := []string{"a", "b", "c", "d"}
	for i, ref := range refs {
		trade := &entity.SimTrade{
			Ref:        ref,
			UserID:     1,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
			Action:     "BUY",
			Symbol:     "AAPL",
			Quantity:   1,
			Price:      decimal.NewFromInt(100),
			Total:      decimal.NewFromInt(100),
			Fee:        decimal.RequireFromString("0.50"),
		}
		require.NoError(t, repo.Create(ctx, trade))
		assert.NotZero(t, trade.ID)
	}
	require.NoError(t, repo.Create(ctx, &entity.SimTrade{
		Ref: "other", UserID: 2, ExecutedAt: base, Action: "SELL", Symbol: "AAPL", Quantity: 1,
		Price: decimal.NewFromInt(1), Total: decimal.NewFromInt(1), Fee: decimal.RequireFromString("0.50"),
		RealizedPnL: decimal.NewNullDecimal(decimal.RequireFromString("-0.50")),
	}))

	trades, err := repo.ListRecentByUserID(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "d", trades[0].Ref)
	assert.Equal(t, "c", trades[1].Ref)
	assert.Equal(t, "b", trades[2].Ref)
	assert.False(t, trades[0].RealizedPnL.Valid)

	others, err := repo.ListRecentByUserID(ctx, 2, 100)
	require.NoError(t, err)
	require.Len(t, others, 1)
	require.True(t, others[0].RealizedPnL.Valid)
	assert.Equal(t, "-0.50", others[0].RealizedPnL.Decimal.StringFixed(2))
}

func TestTradeRepository_RefIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewTradeRepository(db)
	ctx := context.Background()

	trade := func() *entity.SimTrade {
		return &entity.SimTrade{
			Ref: "dup", UserID: 1, ExecutedAt: time.Now().UTC(), Action: "BUY", Symbol: "AAPL", Quantity: 1,
			Price: decimal.NewFromInt(1), Total: decimal.NewFromInt(1), Fee: decimal.RequireFromString("0.50"),
		}
	}
	require.NoError(t, repo.Create(ctx, trade()))
	assert.Error(t, repo.Create(ctx, trade()))
}

// newPostgresDryRunDB builds statements with the postgres dialect without
// connecting; every query statement is recorded.
func newPostgresDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=paper dbname=paper sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))
	return db, &statements
}

func TestLockQueriesUseRowLocksOnPostgres(t *testing.T) {
	db, statements := newPostgresDryRunDB(t)
	ctx := context.Background()

	_, err := NewAccountRepository(db).LockByUserID(ctx, 1)
	require.NoError(t, err)
	_, err = NewPositionRepository(db).WithTx(db).Lock(ctx, 1, "AAPL")
	require.NoError(t, err)
	_, err = NewAccountRepository(db).FindByUserID(ctx, 1)
	require.NoError(t, err)

	require.Len(t, *statements, 3)
	account, position, plain := (*statements)[0], (*statements)[1], (*statements)[2]

	assert.Contains(t, account, `FROM "sim_accounts"`)
	assert.True(t, strings.HasSuffix(account, "FOR UPDATE"), account)
	assert.Contains(t, position, `FROM "sim_positions"`)
	assert.True(t, strings.HasSuffix(position, "FOR UPDATE"), position)
	assert.NotContains(t, plain, "FOR UPDATE")
}
