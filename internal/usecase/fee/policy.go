package fee

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Policy holds the configured fee rates.
// Buy and sell use different rates but share one minimum fee.
type Policy struct {
	BuyRate    decimal.Decimal // Fraction of the gross amount, e.g. 0.001 = 0.1%
	SellRate   decimal.Decimal
	MinimumFee decimal.Decimal
}

// Validate ensures the policy is usable.
// It is checked once at startup; Calculate assumes a valid policy.
func (p Policy) Validate() error {
	if p.BuyRate.IsNegative() {
		return errors.New("buy fee rate cannot be negative")
	}
	if p.SellRate.IsNegative() {
		return errors.New("sell fee rate cannot be negative")
	}
	if p.MinimumFee.IsNegative() {
		return errors.New("minimum fee cannot be negative")
	}
	return nil
}

// Calculate returns the fee for a trade of grossAmount on side
// Logic: fee = max(grossAmount * rate(side), MinimumFee)
func (p Policy) Calculate(side domain.OrderSide, grossAmount decimal.Decimal) decimal.Decimal {
	return decimal.Max(grossAmount.Mul(p.rate(side)), p.MinimumFee)
}

// BuyFee is Calculate for the buy side
func (p Policy) BuyFee(grossAmount decimal.Decimal) decimal.Decimal {
	return p.Calculate(domain.OrderSideBuy, grossAmount)
}

// SellFee is Calculate for the sell side
func (p Policy) SellFee(grossAmount decimal.Decimal) decimal.Decimal {
	return p.Calculate(domain.OrderSideSell, grossAmount)
}

func (p Policy) rate(side domain.OrderSide) decimal.Decimal {
	if side == domain.OrderSideSell {
		return p.SellRate
	}
	return p.BuyRate
}
