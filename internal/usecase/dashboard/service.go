package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// PerformanceResult summarises an account's wealth at live prices
type PerformanceResult struct {
	NetWorth         decimal.Decimal // Liquidity + Equity
	Liquidity        decimal.Decimal // Cash balance
	Equity           decimal.Decimal // Holdings value at live prices
	Invested         decimal.Decimal
	Return           decimal.Decimal
	PercentageReturn decimal.Decimal
}

// DashboardService handles read-only portfolio views
type DashboardService struct {
	InstrumentRepo domain.InstrumentRepository
	AccountRepo    domain.AccountRepository
	PortfolioRepo  domain.PortfolioRepository
	Now            func() time.Time
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	instrumentRepo domain.InstrumentRepository,
	accountRepo domain.AccountRepository,
	portfolioRepo domain.PortfolioRepository,
) *DashboardService {
	return &DashboardService{
		InstrumentRepo: instrumentRepo,
		AccountRepo:    accountRepo,
		PortfolioRepo:  portfolioRepo,
		Now:            time.Now,
	}
}

// GetPortfolio returns the user's portfolio revalued at live prices.
// The revalued copy is not written back.
func (s *DashboardService) GetPortfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	if _, err := s.AccountRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	portfolio, err := s.PortfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	instruments, err := s.InstrumentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}

	if err := portfolio.Revalue(domain.PriceMap(instruments), s.Now()); err != nil {
		return nil, err
	}

	return portfolio, nil
}

// GetPerformance calculates the user's net worth
// Logic:
//   - Liquidity: the account cash balance
//   - Equity: the portfolio value at live prices (zero without a portfolio)
//   - NetWorth: Liquidity + Equity
func (s *DashboardService) GetPerformance(ctx context.Context, userID string) (*PerformanceResult, error) {
	account, err := s.AccountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &PerformanceResult{
		Liquidity:        account.Balance,
		Equity:           decimal.Zero,
		Invested:         decimal.Zero,
		Return:           decimal.Zero,
		PercentageReturn: decimal.Zero,
	}

	portfolio, err := s.GetPortfolio(ctx, userID)
	switch {
	case err == nil:
		result.Equity = portfolio.TotalValue
		result.Invested = portfolio.TotalInvested
		result.Return = portfolio.TotalReturn
		result.PercentageReturn = portfolio.PercentageReturn
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to value portfolio: %w", err)
	}

	result.NetWorth = result.Liquidity.Add(result.Equity)
	return result, nil
}
