package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// RiskTolerance is the risk profile declared by an account holder
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// Account represents a trading user with a fabricated cash balance
type Account struct {
	ID            string
	Name          string
	Email         string
	APIKey        string
	Balance       decimal.Decimal
	RiskTolerance RiskTolerance
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.ID == "" {
		return errors.New("account ID cannot be empty")
	}
	if a.Balance.IsNegative() {
		return errors.New("account balance cannot be negative")
	}
	switch a.RiskTolerance {
	case RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh:
	default:
		return errors.New("risk tolerance must be low, medium, or high")
	}
	return nil
}

// CanAfford reports whether the balance covers amount
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Debit removes amount from the balance.
// The balance is never allowed to go negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("debit amount cannot be negative")
	}
	if !a.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("credit amount cannot be negative")
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}
