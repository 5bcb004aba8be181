package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Demo account IDs
const (
	DemoUserID   = "demo_user"
	AdminUserID  = "admin_user"
	TraderUserID = "trader_user"
)

// InstrumentSeed defines an instrument to be registered at its base price
type InstrumentSeed struct {
	Symbol    string
	Name      string
	Sector    string
	BasePrice decimal.Decimal
}

// DemoAccounts are the accounts every fresh process starts with
var DemoAccounts = []domain.Account{
	{
		ID:            DemoUserID,
		Name:          "Demo User",
		Email:         "demo@tradesim.local",
		APIKey:        "demo-key-123",
		Balance:       decimal.NewFromInt(10000),
		RiskTolerance: domain.RiskToleranceMedium,
	},
	{
		ID:            AdminUserID,
		Name:          "Admin User",
		Email:         "admin@tradesim.local",
		APIKey:        "admin-key-456",
		Balance:       decimal.NewFromInt(50000),
		RiskTolerance: domain.RiskToleranceHigh,
	},
	{
		ID:            TraderUserID,
		Name:          "Trader User",
		Email:         "trader@tradesim.local",
		APIKey:        "trader-key-789",
		Balance:       decimal.NewFromInt(25000),
		RiskTolerance: domain.RiskToleranceLow,
	},
}

// SystemSeeder handles seeding of the instruments and demo accounts
type SystemSeeder struct {
	instrumentRepo domain.InstrumentRepository
	accountRepo    domain.AccountRepository
	portfolioRepo  domain.PortfolioRepository
	instruments    []InstrumentSeed
	now            func() time.Time
}

// NewSystemSeeder creates a new SystemSeeder instance
func NewSystemSeeder(
	instrumentRepo domain.InstrumentRepository,
	accountRepo domain.AccountRepository,
	portfolioRepo domain.PortfolioRepository,
	instruments []InstrumentSeed,
) *SystemSeeder {
	return &SystemSeeder{
		instrumentRepo: instrumentRepo,
		accountRepo:    accountRepo,
		portfolioRepo:  portfolioRepo,
		instruments:    instruments,
		now:            time.Now,
	}
}

// Seed ensures all instruments, demo accounts and their portfolios exist.
// Existing records are left untouched so seeding twice is harmless.
func (s *SystemSeeder) Seed(ctx context.Context) error {
	now := s.now()

	for _, seed := range s.instruments {
		_, err := s.instrumentRepo.GetBySymbol(ctx, seed.Symbol)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		instrument := &domain.Instrument{
			Symbol:    seed.Symbol,
			Name:      seed.Name,
			Sector:    seed.Sector,
			Price:     seed.BasePrice,
			UpdatedAt: now,
		}

		// Validate before creating
		if err := instrument.Validate(); err != nil {
			return err
		}

		if err := s.instrumentRepo.Upsert(ctx, instrument); err != nil {
			return err
		}
	}

	for _, demo := range DemoAccounts {
		if err := s.seedAccount(ctx, demo, now); err != nil {
			return err
		}
	}

	return nil
}

func (s *SystemSeeder) seedAccount(ctx context.Context, demo domain.Account, now time.Time) error {
	_, err := s.accountRepo.GetByID(ctx, demo.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		account := demo
		if err := account.Validate(); err != nil {
			return err
		}
		if err := s.accountRepo.Upsert(ctx, &account); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	_, err = s.portfolioRepo.GetByUserID(ctx, demo.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.portfolioRepo.Upsert(ctx, domain.NewPortfolio(demo.ID, now))
	case err != nil:
		return err
	}

	return nil
}
