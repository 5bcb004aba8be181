package analysis

import (
	"context"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

const (
	averageVariation = 0.1 // averages land within +/-5% of the price
	rsiBase          = 20.0
	rsiSpan          = 60.0
)

// TechnicalAnalysis produces a trend signal for symbol.
// The moving averages and RSI are random placeholders drawn around the current
// price, not indicators computed from a price history.
func (s *AnalysisService) TechnicalAnalysis(ctx context.Context, symbol string) (*domain.TechnicalAnalysis, error) {
	inst, err := s.InstrumentRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price := inst.Price.InexactFloat64()

	s.randMu.Lock()
	sma20 := price * (1 + (s.Rand.Float64()-0.5)*averageVariation)
	sma50 := price * (1 + (s.Rand.Float64()-0.5)*averageVariation)
	rsi := rsiBase + s.Rand.Float64()*rsiSpan
	s.randMu.Unlock()

	return &domain.TechnicalAnalysis{
		Symbol:       inst.Symbol,
		CurrentPrice: price,
		SMA20:        sma20,
		SMA50:        sma50,
		RSI:          rsi,
		Signal:       ClassifySignal(price, sma20, sma50, rsi),
		AnalyzedAt:   s.Now(),
	}, nil
}

// ClassifySignal is buy on an uptrend that is not overbought, sell on a
// downtrend that is not oversold, and hold otherwise
func ClassifySignal(price, sma20, sma50, rsi float64) domain.Signal {
	switch {
	case price > sma20 && sma20 > sma50 && rsi < 70:
		return domain.SignalBuy
	case price < sma20 && sma20 < sma50 && rsi > 30:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
