package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Validate(t *testing.T) {
	now := time.Now()
	valid := func() Transaction {
		return *NewTransaction(OrderSideBuy, "demo_user", "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(1), now)
	}

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid buy transaction",
			mutate:  func(tx *Transaction) {},
			wantErr: false,
		},
		{
			name:    "empty ID should fail",
			mutate:  func(tx *Transaction) { tx.ID = "" },
			wantErr: true,
			errMsg:  "transaction ID cannot be empty",
		},
		{
			name:    "unknown side should fail",
			mutate:  func(tx *Transaction) { tx.Side = OrderSide("short") },
			wantErr: true,
			errMsg:  "transaction side must be buy or sell",
		},
		{
			name:    "zero quantity should fail",
			mutate:  func(tx *Transaction) { tx.Quantity = decimal.Zero },
			wantErr: true,
			errMsg:  "transaction quantity must be positive",
		},
		{
			name:    "zero price should fail",
			mutate:  func(tx *Transaction) { tx.Price = decimal.Zero },
			wantErr: true,
			errMsg:  "transaction price must be positive",
		},
		{
			name:    "negative fee should fail",
			mutate:  func(tx *Transaction) { tx.Fee = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "transaction fee cannot be negative",
		},
		{
			name:    "zero fee should pass",
			mutate:  func(tx *Transaction) { tx.Fee = decimal.Zero },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTransactionID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	id := NewTransactionID(now)

	assert.Regexp(t, regexp.MustCompile(`^txn_1700000000000_[0-9a-f]{9}$`), id)
	assert.NotEqual(t, id, NewTransactionID(now), "IDs generated at the same instant must differ")
}

func TestTransaction_Complete(t *testing.T) {
	now := time.Now()
	tx := NewTransaction(OrderSideSell, "demo_user", "AAPL", decimal.NewFromInt(5), decimal.NewFromInt(120), decimal.NewFromInt(6), now)
	assert.Equal(t, TransactionStatusPending, tx.Status)
	assert.Nil(t, tx.CompletedAt)

	require.NoError(t, tx.Complete(now))
	assert.Equal(t, TransactionStatusCompleted, tx.Status)
	require.NotNil(t, tx.CompletedAt)

	// Completed is terminal
	err := tx.Complete(now)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestTransaction_NetAmount(t *testing.T) {
	now := time.Now()

	buy := NewTransaction(OrderSideBuy, "u", "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), now)
	assert.True(t, buy.GrossAmount().Equal(decimal.NewFromInt(1000)))
	assert.True(t, buy.NetAmount().Equal(decimal.NewFromInt(-1010)), "buy costs gross + fee")

	sell := NewTransaction(OrderSideSell, "u", "AAPL", decimal.NewFromInt(5), decimal.NewFromInt(120), decimal.NewFromInt(6), now)
	assert.True(t, sell.GrossAmount().Equal(decimal.NewFromInt(600)))
	assert.True(t, sell.NetAmount().Equal(decimal.NewFromInt(594)), "sell yields gross - fee")
}
