package memory

import (
	"context"
	"fmt"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository
type ledgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(store *Store) domain.LedgerRepository {
	return &ledgerRepository{store: store}
}

// Append adds a transaction to the owner's log
func (r *ledgerRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ledger[tx.UserID] = append(r.store.ledger[tx.UserID], copyTransaction(tx))

	return nil
}

// ListByUserID retrieves a user's transactions in append order.
// An unknown user has an empty history.
func (r *ledgerRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := r.store.ledger[userID]
	txs := make([]*domain.Transaction, 0, len(entries))
	for _, tx := range entries {
		txs = append(txs, copyTransaction(tx))
	}

	return txs, nil
}
