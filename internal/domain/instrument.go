package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceFloor is the lowest price any instrument can reach.
// Return calculations divide by prices, so zero must never be reachable.
var PriceFloor = decimal.RequireFromString("0.01")

// Instrument is a tradable symbol with its synthetic market state.
// It merges the asset view (name, sector, current price) and the market data view
// (change, volume) into one record so the two can never diverge.
type Instrument struct {
	Symbol        string
	Name          string
	Sector        string
	Price         decimal.Decimal
	Change        decimal.Decimal // Absolute change applied by the last tick or event
	ChangePercent decimal.Decimal
	Volume        int64
	UpdatedAt     time.Time
}

// Validate ensures the instrument adheres to domain rules
func (i *Instrument) Validate() error {
	if i.Symbol == "" {
		return errors.New("instrument symbol cannot be empty")
	}
	if i.Price.LessThan(PriceFloor) {
		return fmt.Errorf("%w: price of %s is below floor: %s", ErrInvariantViolation, i.Symbol, i.Price)
	}
	if i.Volume < 0 {
		return fmt.Errorf("%w: negative volume for %s", ErrInvariantViolation, i.Symbol)
	}
	return nil
}

// Reprice moves the instrument to newPrice (clamped to PriceFloor) and records
// the change relative to the previous price.
func (i *Instrument) Reprice(newPrice decimal.Decimal, now time.Time) {
	if newPrice.LessThan(PriceFloor) {
		newPrice = PriceFloor
	}

	previous := i.Price
	i.Change = newPrice.Sub(previous)
	if previous.IsPositive() {
		i.ChangePercent = i.Change.Div(previous).Mul(decimal.NewFromInt(100))
	} else {
		i.ChangePercent = decimal.Zero
	}
	i.Price = newPrice
	i.UpdatedAt = now
}

// PriceMap indexes the current prices of instruments by symbol
func PriceMap(instruments []*Instrument) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(instruments))
	for _, inst := range instruments {
		prices[inst.Symbol] = inst.Price
	}
	return prices
}
