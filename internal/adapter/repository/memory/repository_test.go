package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

func TestInstrumentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInstrumentRepository(NewStore())

	for _, symbol := range []string{"TSLA", "AAPL", "JNJ"} {
		require.NoError(t, repo.Upsert(ctx, &domain.Instrument{Symbol: symbol, Price: decimal.NewFromInt(100)}))
	}

	t.Run("GetAll keeps registration order", func(t *testing.T) {
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "TSLA", all[0].Symbol)
		assert.Equal(t, "AAPL", all[1].Symbol)
		assert.Equal(t, "JNJ", all[2].Symbol)
	})

	t.Run("Upsert replaces without reordering", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.Instrument{Symbol: "TSLA", Price: decimal.NewFromInt(5)}))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "TSLA", all[0].Symbol)
		assert.True(t, all[0].Price.Equal(decimal.NewFromInt(5)))
	})

	t.Run("GetBySymbol unknown is not found", func(t *testing.T) {
		_, err := repo.GetBySymbol(ctx, "NOPE")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("returned records are copies", func(t *testing.T) {
		inst, err := repo.GetBySymbol(ctx, "AAPL")
		require.NoError(t, err)
		inst.Price = decimal.NewFromInt(1)

		again, err := repo.GetBySymbol(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, again.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("invalid instrument is rejected", func(t *testing.T) {
		err := repo.Upsert(ctx, &domain.Instrument{Symbol: "BAD", Price: decimal.Zero})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)

		_, err = repo.GetBySymbol(ctx, "BAD")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	demo := &domain.Account{ID: "demo_user", APIKey: "demo-key-123", Balance: decimal.NewFromInt(10000), RiskTolerance: domain.RiskToleranceMedium}
	admin := &domain.Account{ID: "admin_user", APIKey: "admin-key-456", Balance: decimal.NewFromInt(50000), RiskTolerance: domain.RiskToleranceHigh}
	require.NoError(t, repo.Upsert(ctx, demo))
	require.NoError(t, repo.Upsert(ctx, admin))

	got, err := repo.GetByID(ctx, "demo_user")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(10000)))

	byKey, err := repo.GetByAPIKey(ctx, "admin-key-456")
	require.NoError(t, err)
	assert.Equal(t, "admin_user", byKey.ID)

	_, err = repo.GetByAPIKey(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByAPIKey(ctx, "wrong")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// mutating the caller's copy after Upsert does not leak into the store
	demo.Balance = decimal.Zero
	got, err = repo.GetByID(ctx, "demo_user")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(10000)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "demo_user", all[0].ID)
	assert.Equal(t, "admin_user", all[1].ID)
}

func TestPortfolioRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository(NewStore())

	_, err := repo.GetByUserID(ctx, "demo_user")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p := domain.NewPortfolio("demo_user", time.Now())
	require.NoError(t, p.AddHolding("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100)))
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.GetByUserID(ctx, "demo_user")
	require.NoError(t, err)
	require.NoError(t, got.AddHolding("TSLA", decimal.NewFromInt(1), decimal.NewFromInt(800)))

	again, err := repo.GetByUserID(ctx, "demo_user")
	require.NoError(t, err)
	assert.Len(t, again.Holdings, 1, "edits on a fetched portfolio stay local until Upsert")

	invalid := &domain.Portfolio{UserID: "demo_user", Holdings: []domain.Holding{{Symbol: "AAPL", Quantity: decimal.Zero}}}
	assert.Error(t, repo.Upsert(ctx, invalid))
}

func TestLedgerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(NewStore())
	now := time.Now()

	first := domain.NewTransaction(domain.OrderSideBuy, "demo_user", "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), now)
	require.NoError(t, first.Complete(now))
	second := domain.NewTransaction(domain.OrderSideSell, "demo_user", "AAPL", decimal.NewFromInt(5), decimal.NewFromInt(120), decimal.NewFromInt(6), now)
	require.NoError(t, second.Complete(now))
	other := domain.NewTransaction(domain.OrderSideBuy, "admin_user", "TSLA", decimal.NewFromInt(1), decimal.NewFromInt(800), decimal.NewFromInt(1), now)

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, other))

	txs, err := repo.ListByUserID(ctx, "demo_user")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, first.ID, txs[0].ID)
	assert.Equal(t, second.ID, txs[1].ID)
	require.NotNil(t, txs[0].CompletedAt)

	empty, err := repo.ListByUserID(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, empty)

	bad := &domain.Transaction{ID: "x", Side: domain.OrderSideBuy, Quantity: decimal.Zero, Price: decimal.NewFromInt(1)}
	assert.Error(t, repo.Append(ctx, bad))
}
