package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSide represents the direction of a trade
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TransactionStatus represents the lifecycle state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is the ledger record of one executed order.
// It is immutable once completed and appended to the ledger.
type Transaction struct {
	ID          string
	UserID      string
	Side        OrderSide
	Symbol      string
	Quantity    decimal.Decimal
	Price       decimal.Decimal // Execution price per unit
	Fee         decimal.Decimal
	Status      TransactionStatus
	CreatedAt   time.Time
	CompletedAt *time.Time // NULL until the transaction completes
}

// NewTransaction creates a pending transaction with a generated ID
func NewTransaction(side OrderSide, userID, symbol string, quantity, price, fee decimal.Decimal, now time.Time) *Transaction {
	return &Transaction{
		ID:        NewTransactionID(now),
		UserID:    userID,
		Side:      side,
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Fee:       fee,
		Status:    TransactionStatusPending,
		CreatedAt: now,
	}
}

// NewTransactionID builds an ID from the creation time plus a random suffix,
// e.g. txn_1700000000000_3f9a2c81d
func NewTransactionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("txn_%d_%s", now.UnixMilli(), suffix)
}

// Complete moves a pending transaction to completed
func (t *Transaction) Complete(now time.Time) error {
	if t.Status != TransactionStatusPending {
		return fmt.Errorf("%w: transaction %s is %s, not pending", ErrInvariantViolation, t.ID, t.Status)
	}
	t.Status = TransactionStatusCompleted
	t.CompletedAt = &now
	return nil
}

// GrossAmount returns Price * Quantity
func (t *Transaction) GrossAmount() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}

// NetAmount returns the cash effect on the account:
// -(gross + fee) for a buy, gross - fee for a sell.
func (t *Transaction) NetAmount() decimal.Decimal {
	if t.Side == OrderSideBuy {
		return t.GrossAmount().Add(t.Fee).Neg()
	}
	return t.GrossAmount().Sub(t.Fee)
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return errors.New("transaction ID cannot be empty")
	}
	if t.Side != OrderSideBuy && t.Side != OrderSideSell {
		return errors.New("transaction side must be buy or sell")
	}
	if !t.Quantity.IsPositive() {
		return errors.New("transaction quantity must be positive")
	}
	if !t.Price.IsPositive() {
		return errors.New("transaction price must be positive")
	}
	if t.Fee.IsNegative() {
		return errors.New("transaction fee cannot be negative")
	}
	return nil
}
