package risk

import (
	"sort"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Recommend proposes instruments the portfolio does not hold yet, matched to the
// account's risk tolerance by sector volatility.
// Logic:
//  1. Skip every instrument already held
//  2. low tolerance matches volatility < 50, high matches > 60, medium matches [40, 60]
//  3. High tolerance matches get priority 2, everything else priority 1
//  4. Sort by descending priority (stable, so instrument order breaks ties) and keep the top 5
func Recommend(tolerance domain.RiskTolerance, held *domain.Portfolio, instruments []*domain.Instrument) []domain.Recommendation {
	owned := make(map[string]struct{}, len(held.Holdings))
	for _, h := range held.Holdings {
		owned[h.Symbol] = struct{}{}
	}

	recs := make([]domain.Recommendation, 0)
	for _, inst := range instruments {
		if _, ok := owned[inst.Symbol]; ok {
			continue
		}

		vol := SectorVolatility(inst.Sector)
		reason, priority, ok := match(tolerance, vol)
		if !ok {
			continue
		}

		recs = append(recs, domain.Recommendation{
			Symbol:       inst.Symbol,
			Name:         inst.Name,
			CurrentPrice: inst.Price,
			Reason:       reason,
			Priority:     priority,
			RiskLevel:    LevelOf(vol),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func match(tolerance domain.RiskTolerance, vol float64) (string, int, bool) {
	switch tolerance {
	case domain.RiskToleranceLow:
		if vol < 50 {
			return MsgConservativeMatch, priorityDefault, true
		}
	case domain.RiskToleranceHigh:
		if vol > 60 {
			return MsgAggressiveMatch, priorityAggressive, true
		}
	case domain.RiskToleranceMedium:
		if vol >= 40 && vol <= 60 {
			return MsgModerateMatch, priorityDefault, true
		}
	}
	return "", 0, false
}
