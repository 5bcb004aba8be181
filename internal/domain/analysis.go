package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskTier is the coarse classification of a portfolio's aggregate risk
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// RiskAnalysis is recomputed on every request and never persisted
type RiskAnalysis struct {
	UserID               string
	Tier                 RiskTier
	DiversificationScore float64 // 0-100
	VolatilityScore      float64 // 0-100
	Recommendations      []string
	AnalyzedAt           time.Time
}

// Recommendation suggests an instrument the user does not hold yet
type Recommendation struct {
	Symbol       string
	Name         string
	CurrentPrice decimal.Decimal
	Reason       string
	Priority     int
	RiskLevel    RiskTier
}

// Signal is the outcome of a technical analysis
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// TechnicalAnalysis holds the indicators computed for one symbol
type TechnicalAnalysis struct {
	Symbol       string
	CurrentPrice float64
	SMA20        float64
	SMA50        float64
	RSI          float64
	Signal       Signal
	AnalyzedAt   time.Time
}

// RandomSource yields uniform draws in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}
