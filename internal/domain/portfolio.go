package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Holding represents a user's position in one instrument
type Holding struct {
	Symbol           string
	Quantity         decimal.Decimal // Always positive while the holding exists
	AveragePrice     decimal.Decimal // Cost basis per unit
	CurrentValue     decimal.Decimal // Derived: Quantity * live price
	TotalReturn      decimal.Decimal // Derived: CurrentValue - Invested
	PercentageReturn decimal.Decimal // Derived: TotalReturn / Invested * 100
}

// Invested returns the cost basis of the holding
func (h *Holding) Invested() decimal.Decimal {
	return h.Quantity.Mul(h.AveragePrice)
}

// Portfolio represents the positions owned by one account.
// Totals are a pure function of the holdings and live prices and are recomputed
// by Revalue after every mutation.
type Portfolio struct {
	UserID           string
	Holdings         []Holding
	TotalValue       decimal.Decimal
	TotalInvested    decimal.Decimal
	TotalReturn      decimal.Decimal
	PercentageReturn decimal.Decimal
	LastUpdated      time.Time
}

// NewPortfolio creates an empty portfolio for userID
func NewPortfolio(userID string, now time.Time) *Portfolio {
	return &Portfolio{
		UserID:      userID,
		Holdings:    []Holding{},
		LastUpdated: now,
	}
}

// Validate ensures the portfolio adheres to domain rules
func (p *Portfolio) Validate() error {
	if p.UserID == "" {
		return errors.New("portfolio user ID cannot be empty")
	}

	seen := make(map[string]bool, len(p.Holdings))
	for _, h := range p.Holdings {
		if seen[h.Symbol] {
			return fmt.Errorf("%w: duplicate holding for %s", ErrInvariantViolation, h.Symbol)
		}
		seen[h.Symbol] = true

		if !h.Quantity.IsPositive() {
			return fmt.Errorf("%w: holding %s has non-positive quantity", ErrInvariantViolation, h.Symbol)
		}
	}
	return nil
}

// Holding returns the holding for symbol, or nil if the user holds none
func (p *Portfolio) Holding(symbol string) *Holding {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// AddHolding increases the position in symbol by quantity bought at price.
// An existing position gets a quantity-weighted average price.
func (p *Portfolio) AddHolding(symbol string, quantity, price decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}

	existing := p.Holding(symbol)
	if existing == nil {
		p.Holdings = append(p.Holdings, Holding{
			Symbol:       symbol,
			Quantity:     quantity,
			AveragePrice: price,
		})
		return nil
	}

	// (oldQty*oldAvg + qty*price) / (oldQty+qty)
	newQuantity := existing.Quantity.Add(quantity)
	cost := existing.Invested().Add(quantity.Mul(price))
	existing.AveragePrice = cost.Div(newQuantity)
	existing.Quantity = newQuantity
	return nil
}

// RemoveHolding decreases the position in symbol by quantity.
// The holding is dropped when it reaches exactly zero; the average price of the
// remaining units is left untouched.
func (p *Portfolio) RemoveHolding(symbol string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}

	for i := range p.Holdings {
		h := &p.Holdings[i]
		if h.Symbol != symbol {
			continue
		}
		if h.Quantity.LessThan(quantity) {
			return &InsufficientHoldingsError{UserID: p.UserID, Symbol: symbol, Requested: quantity, Available: h.Quantity}
		}

		h.Quantity = h.Quantity.Sub(quantity)
		if h.Quantity.IsZero() {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		}
		return nil
	}

	return &InsufficientHoldingsError{UserID: p.UserID, Symbol: symbol, Requested: quantity, Available: decimal.Zero}
}

// Revalue recomputes every derived holding field and the portfolio totals from
// live prices. A holding whose symbol has no price is an invariant violation and
// leaves the portfolio untouched.
func (p *Portfolio) Revalue(prices map[string]decimal.Decimal, now time.Time) error {
	for _, h := range p.Holdings {
		if _, ok := prices[h.Symbol]; !ok {
			return fmt.Errorf("%w: no price for held symbol %s", ErrInvariantViolation, h.Symbol)
		}
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero

	for i := range p.Holdings {
		h := &p.Holdings[i]
		invested := h.Invested()
		h.CurrentValue = h.Quantity.Mul(prices[h.Symbol])
		h.TotalReturn = h.CurrentValue.Sub(invested)
		h.PercentageReturn = percentOf(h.TotalReturn, invested)

		totalValue = totalValue.Add(h.CurrentValue)
		totalInvested = totalInvested.Add(invested)
	}

	p.TotalValue = totalValue
	p.TotalInvested = totalInvested
	p.TotalReturn = totalValue.Sub(totalInvested)
	p.PercentageReturn = percentOf(p.TotalReturn, totalInvested)
	p.LastUpdated = now
	return nil
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (p *Portfolio) Clone() *Portfolio {
	cp := *p
	cp.Holdings = make([]Holding, len(p.Holdings))
	copy(cp.Holdings, p.Holdings)
	return &cp
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
