package memory

import (
	"context"
	"fmt"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	store *Store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store *Store) domain.AccountRepository {
	return &accountRepository{store: store}
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}

	return copyAccount(account), nil
}

// GetByAPIKey retrieves the account owning apiKey
func (r *accountRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if apiKey != "" {
		for _, id := range r.store.accountIDs {
			if account := r.store.accounts[id]; account.APIKey == apiKey {
				return copyAccount(account), nil
			}
		}
	}

	return nil, fmt.Errorf("account for api key: %w", domain.ErrNotFound)
}

// List retrieves every account in creation order
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accountIDs))
	for _, id := range r.store.accountIDs {
		accounts = append(accounts, copyAccount(r.store.accounts[id]))
	}

	return accounts, nil
}

// Upsert creates or replaces an account
func (r *accountRepository) Upsert(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.ID]; !ok {
		r.store.accountIDs = append(r.store.accountIDs, account.ID)
	}
	r.store.accounts[account.ID] = copyAccount(account)

	return nil
}
