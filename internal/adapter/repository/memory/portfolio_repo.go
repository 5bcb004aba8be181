package memory

import (
	"context"
	"fmt"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	store *Store
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(store *Store) domain.PortfolioRepository {
	return &portfolioRepository{store: store}
}

// GetByUserID retrieves the portfolio owned by userID
func (r *portfolioRepository) GetByUserID(ctx context.Context, userID string) (*domain.Portfolio, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	portfolio, ok := r.store.portfolios[userID]
	if !ok {
		return nil, fmt.Errorf("portfolio for user %s: %w", userID, domain.ErrNotFound)
	}

	return portfolio.Clone(), nil
}

// Upsert creates or replaces a portfolio
func (r *portfolioRepository) Upsert(ctx context.Context, portfolio *domain.Portfolio) error {
	if err := portfolio.Validate(); err != nil {
		return fmt.Errorf("invalid portfolio: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.portfolios[portfolio.UserID] = portfolio.Clone()

	return nil
}
