package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/usecase/risk"
)

// AnalysisService answers read-only risk and market questions.
// Portfolios are revalued at the live prices on every read and never written back.
type AnalysisService struct {
	InstrumentRepo domain.InstrumentRepository
	AccountRepo    domain.AccountRepository
	PortfolioRepo  domain.PortfolioRepository
	Rand           domain.RandomSource
	Now            func() time.Time

	randMu sync.Mutex
}

// NewAnalysisService creates a new AnalysisService instance
func NewAnalysisService(
	instrumentRepo domain.InstrumentRepository,
	accountRepo domain.AccountRepository,
	portfolioRepo domain.PortfolioRepository,
	rnd domain.RandomSource,
) *AnalysisService {
	return &AnalysisService{
		InstrumentRepo: instrumentRepo,
		AccountRepo:    accountRepo,
		PortfolioRepo:  portfolioRepo,
		Rand:           rnd,
		Now:            time.Now,
	}
}

// AnalyzePortfolioRisk scores the user's portfolio
// Logic:
//  1. Fetch the portfolio (NotFound if absent) and revalue it at live prices
//  2. Compute the diversification and volatility scores
//  3. Classify the risk tier from both scores
//  4. Recommendations are the diversification text, the volatility text and the tier text, in that order
func (s *AnalysisService) AnalyzePortfolioRisk(ctx context.Context, userID string) (*domain.RiskAnalysis, error) {
	portfolio, instruments, err := s.valuedPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	sectors := sectorsOf(instruments)
	diversification := risk.Diversification(portfolio, sectors)
	volatility := risk.Volatility(portfolio, sectors)
	tier := risk.Classify(volatility.Score, diversification.Score)

	return &domain.RiskAnalysis{
		UserID:               userID,
		Tier:                 tier,
		DiversificationScore: diversification.Score,
		VolatilityScore:      volatility.Score,
		Recommendations: []string{
			diversification.Recommendation,
			volatility.Recommendation,
			risk.TierRecommendation(tier),
		},
		AnalyzedAt: s.Now(),
	}, nil
}

// GenerateRecommendations proposes unheld instruments matching the user's risk tolerance.
// Both the account and its portfolio must exist.
func (s *AnalysisService) GenerateRecommendations(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	account, err := s.AccountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.PortfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	instruments, err := s.InstrumentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return risk.Recommend(account.RiskTolerance, portfolio, instruments), nil
}

func (s *AnalysisService) valuedPortfolio(ctx context.Context, userID string) (*domain.Portfolio, []*domain.Instrument, error) {
	portfolio, err := s.PortfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	instruments, err := s.InstrumentRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := portfolio.Revalue(domain.PriceMap(instruments), s.Now()); err != nil {
		return nil, nil, err
	}

	return portfolio, instruments, nil
}

func sectorsOf(instruments []*domain.Instrument) map[string]string {
	sectors := make(map[string]string, len(instruments))
	for _, inst := range instruments {
		sectors[inst.Symbol] = inst.Sector
	}
	return sectors
}
