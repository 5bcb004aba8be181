package grpc

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/usecase/dashboard"
	"github.com/simaogato/tradesim-backend/internal/usecase/simulation"
)

// stringField reads a required, non-blank string field
func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	value := strings.TrimSpace(s.StringValue)
	if value == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return value, nil
}

// decimalField reads a required decimal field sent either as a number or as a string
func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be a finite number", name)
		}
		return decimal.NewFromFloat(k.NumberValue), nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(k.StringValue))
		if err != nil {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		return d, nil
	default:
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be a number or a decimal string", name)
	}
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func transactionFields(tx *domain.Transaction) map[string]interface{} {
	fields := map[string]interface{}{
		"id":         tx.ID,
		"user_id":    tx.UserID,
		"side":       string(tx.Side),
		"symbol":     tx.Symbol,
		"quantity":   tx.Quantity.String(),
		"price":      tx.Price.String(),
		"fee":        tx.Fee.String(),
		"gross":      tx.GrossAmount().String(),
		"net":        tx.NetAmount().String(),
		"status":     string(tx.Status),
		"created_at": formatTime(tx.CreatedAt),
	}
	if tx.CompletedAt != nil {
		fields["completed_at"] = formatTime(*tx.CompletedAt)
	}
	return fields
}

func portfolioFields(p *domain.Portfolio) map[string]interface{} {
	holdings := make([]interface{}, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, map[string]interface{}{
			"symbol":            h.Symbol,
			"quantity":          h.Quantity.String(),
			"average_price":     h.AveragePrice.String(),
			"current_value":     h.CurrentValue.String(),
			"total_return":      h.TotalReturn.String(),
			"percentage_return": h.PercentageReturn.String(),
		})
	}
	return map[string]interface{}{
		"user_id":           p.UserID,
		"holdings":          holdings,
		"total_value":       p.TotalValue.String(),
		"total_invested":    p.TotalInvested.String(),
		"total_return":      p.TotalReturn.String(),
		"percentage_return": p.PercentageReturn.String(),
		"last_updated":      formatTime(p.LastUpdated),
	}
}

func performanceFields(r *dashboard.PerformanceResult) map[string]interface{} {
	return map[string]interface{}{
		"net_worth":         r.NetWorth.String(),
		"liquidity":         r.Liquidity.String(),
		"equity":            r.Equity.String(),
		"invested":          r.Invested.String(),
		"return":            r.Return.String(),
		"percentage_return": r.PercentageReturn.String(),
	}
}

func riskFields(a *domain.RiskAnalysis) map[string]interface{} {
	recommendations := make([]interface{}, 0, len(a.Recommendations))
	for _, r := range a.Recommendations {
		recommendations = append(recommendations, r)
	}
	return map[string]interface{}{
		"user_id":               a.UserID,
		"risk_level":            string(a.Tier),
		"diversification_score": a.DiversificationScore,
		"volatility_score":      a.VolatilityScore,
		"recommendations":       recommendations,
		"analyzed_at":           formatTime(a.AnalyzedAt),
	}
}

func recommendationList(recs []domain.Recommendation) []interface{} {
	out := make([]interface{}, 0, len(recs))
	for _, r := range recs {
		out = append(out, map[string]interface{}{
			"symbol":        r.Symbol,
			"name":          r.Name,
			"current_price": r.CurrentPrice.String(),
			"reason":        r.Reason,
			"priority":      r.Priority,
			"risk_level":    string(r.RiskLevel),
		})
	}
	return out
}

func technicalFields(a *domain.TechnicalAnalysis) map[string]interface{} {
	return map[string]interface{}{
		"symbol":        a.Symbol,
		"current_price": a.CurrentPrice,
		"sma_20":        a.SMA20,
		"sma_50":        a.SMA50,
		"rsi":           a.RSI,
		"signal":        string(a.Signal),
		"analyzed_at":   formatTime(a.AnalyzedAt),
	}
}

func statusFields(st simulation.Status) map[string]interface{} {
	fields := map[string]interface{}{
		"running":    st.Running,
		"tick_count": st.TickCount,
		"last_tick":  nil,
	}
	if st.LastTick != nil {
		fields["last_tick"] = formatTime(*st.LastTick)
	}
	return fields
}
