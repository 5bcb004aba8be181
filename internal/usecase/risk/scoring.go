package risk

import (
	"math"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Result pairs a 0-100 score with the recommendation text it selects
type Result struct {
	Score          float64
	Recommendation string
}

const (
	maxSectors         = 5
	sectorScoreWeight  = 50.0
	concentrationLimit = 0.3
	defaultVolatility  = 50.0
	maxScore           = 100.0
	maxRecommendations = 5
	priorityDefault    = 1
	priorityAggressive = 2
)

// Recommendation texts
const (
	MsgDiversificationEmpty = "Your portfolio is empty, there is no data to analyze diversification."
	MsgDiversificationLow   = "Consider diversifying your portfolio across more sectors to reduce risk."
	MsgDiversificationHigh  = "Excellent diversification, keep this strategy."
	MsgDiversificationOK    = "Your portfolio has good diversification, keep monitoring it."

	MsgVolatilityEmpty = "Your portfolio is empty, there is no data to analyze volatility."
	MsgVolatilityHigh  = "Your portfolio has high volatility, consider adding more stable assets."
	MsgVolatilityLow   = "Your portfolio has low volatility, which suggests a conservative profile."
	MsgVolatilityOK    = "Your portfolio volatility is moderate, in line with a balanced profile."

	MsgTierHigh     = "High risk level detected, review your investment strategy."
	MsgTierBalanced = "Your portfolio looks balanced, keep monitoring it regularly."

	MsgConservativeMatch = "Low-risk asset recommended for a conservative profile"
	MsgAggressiveMatch   = "Growth-potential asset for an aggressive profile"
	MsgModerateMatch     = "Balanced asset suited to a moderate profile"
)

var sectorVolatility = map[string]float64{
	"Technology": 65,
	"Healthcare": 45,
	"Financial":  55,
	"Automotive": 70,
	"E-commerce": 60,
}

// SectorVolatility returns the fixed volatility of a sector, 50 when unknown
func SectorVolatility(sector string) float64 {
	if v, ok := sectorVolatility[sector]; ok {
		return v
	}
	return defaultVolatility
}

// Diversification scores how well a revalued portfolio is spread.
// Logic:
//  1. sectorScore = min(distinctSectors/5, 1) * 50
//  2. Every holding weighing more than 30% of the portfolio adds (weight-0.3)*100 to the penalty
//  3. distributionScore = max(50 - penalty, 0)
//  4. score = min(sectorScore + distributionScore, 100)
//
// sectors maps symbol to sector; holdings with an unknown symbol do not count as a sector.
func Diversification(p *domain.Portfolio, sectors map[string]string) Result {
	if len(p.Holdings) == 0 {
		return Result{Score: 0, Recommendation: MsgDiversificationEmpty}
	}

	distinct := make(map[string]struct{})
	for _, h := range p.Holdings {
		if sector, ok := sectors[h.Symbol]; ok {
			distinct[sector] = struct{}{}
		}
	}
	sectorScore := math.Min(float64(len(distinct))/maxSectors, 1) * sectorScoreWeight

	penalty := 0.0
	for _, h := range p.Holdings {
		if w := weight(h, p); w > concentrationLimit {
			penalty += (w - concentrationLimit) * 100
		}
	}
	distributionScore := math.Max(sectorScoreWeight-penalty, 0)

	score := math.Min(sectorScore+distributionScore, maxScore)

	var recommendation string
	switch {
	case score < 40:
		recommendation = MsgDiversificationLow
	case score > 80:
		recommendation = MsgDiversificationHigh
	default:
		recommendation = MsgDiversificationOK
	}

	return Result{Score: score, Recommendation: recommendation}
}

// Volatility is the value-weighted average of the holdings' sector volatility, capped at 100
func Volatility(p *domain.Portfolio, sectors map[string]string) Result {
	if len(p.Holdings) == 0 {
		return Result{Score: 0, Recommendation: MsgVolatilityEmpty}
	}

	weighted := 0.0
	for _, h := range p.Holdings {
		sector, ok := sectors[h.Symbol]
		if !ok {
			continue
		}
		weighted += weight(h, p) * SectorVolatility(sector)
	}

	score := math.Min(weighted, maxScore)

	var recommendation string
	switch {
	case score > 70:
		recommendation = MsgVolatilityHigh
	case score < 30:
		recommendation = MsgVolatilityLow
	default:
		recommendation = MsgVolatilityOK
	}

	return Result{Score: score, Recommendation: recommendation}
}

// Classify combines the volatility and diversification scores into a tier
func Classify(volatility, diversification float64) domain.RiskTier {
	switch {
	case volatility < 30 && diversification > 70:
		return domain.RiskTierLow
	case volatility < 60 && diversification > 40:
		return domain.RiskTierMedium
	default:
		return domain.RiskTierHigh
	}
}

// TierRecommendation returns the generic text appended for a tier
func TierRecommendation(tier domain.RiskTier) string {
	if tier == domain.RiskTierHigh {
		return MsgTierHigh
	}
	return MsgTierBalanced
}

// LevelOf labels a volatility figure: >60 high, >40 medium, else low
func LevelOf(volatility float64) domain.RiskTier {
	switch {
	case volatility > 60:
		return domain.RiskTierHigh
	case volatility > 40:
		return domain.RiskTierMedium
	default:
		return domain.RiskTierLow
	}
}

func weight(h domain.Holding, p *domain.Portfolio) float64 {
	if !p.TotalValue.IsPositive() {
		return 0
	}
	return h.CurrentValue.Div(p.TotalValue).InexactFloat64()
}
