package memory

import (
	"sync"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Store holds every record in process memory.
// Records are copied on the way in and on the way out so callers never share
// state with the store or with each other.
type Store struct {
	mu sync.RWMutex

	instruments map[string]*domain.Instrument
	symbols     []string // registration order

	accounts   map[string]*domain.Account
	accountIDs []string

	portfolios map[string]*domain.Portfolio

	ledger map[string][]*domain.Transaction
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		instruments: make(map[string]*domain.Instrument),
		accounts:    make(map[string]*domain.Account),
		portfolios:  make(map[string]*domain.Portfolio),
		ledger:      make(map[string][]*domain.Transaction),
	}
}

func copyInstrument(i *domain.Instrument) *domain.Instrument {
	cp := *i
	return &cp
}

func copyAccount(a *domain.Account) *domain.Account {
	cp := *a
	return &cp
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	cp := *t
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		cp.CompletedAt = &completedAt
	}
	return &cp
}
