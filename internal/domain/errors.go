package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error taxonomy shared by the stores, the services and the transport adapters.
// Callers should match with errors.Is; the typed errors below carry the amounts
// needed to render a message.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvariantViolation   = errors.New("invariant violation")
)

// InsufficientFundsError is returned when a buy costs more than the account balance
type InsufficientFundsError struct {
	UserID    string
	Symbol    string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s on %s: required %s, available %s",
		e.UserID, e.Symbol, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InsufficientHoldingsError is returned when a sell exceeds the owned quantity.
// Available is zero when the user holds no position in Symbol.
type InsufficientHoldingsError struct {
	UserID    string
	Symbol    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of %s for %s: requested %s, available %s",
		e.Symbol, e.UserID, e.Requested.String(), e.Available.String())
}

// Is makes errors.Is(err, ErrInsufficientHoldings) hold
func (e *InsufficientHoldingsError) Is(target error) bool {
	return target == ErrInsufficientHoldings
}
