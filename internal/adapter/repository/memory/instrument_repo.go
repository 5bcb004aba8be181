package memory

import (
	"context"
	"fmt"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	store *Store
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(store *Store) domain.InstrumentRepository {
	return &instrumentRepository{store: store}
}

// GetAll retrieves every instrument in registration order
func (r *instrumentRepository) GetAll(ctx context.Context) ([]*domain.Instrument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	instruments := make([]*domain.Instrument, 0, len(r.store.symbols))
	for _, symbol := range r.store.symbols {
		instruments = append(instruments, copyInstrument(r.store.instruments[symbol]))
	}

	return instruments, nil
}

// GetBySymbol retrieves an instrument by its symbol
func (r *instrumentRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	inst, ok := r.store.instruments[symbol]
	if !ok {
		return nil, fmt.Errorf("instrument %s: %w", symbol, domain.ErrNotFound)
	}

	return copyInstrument(inst), nil
}

// Upsert creates or replaces an instrument
func (r *instrumentRepository) Upsert(ctx context.Context, instrument *domain.Instrument) error {
	if err := instrument.Validate(); err != nil {
		return fmt.Errorf("invalid instrument: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.instruments[instrument.Symbol]; !ok {
		r.store.symbols = append(r.store.symbols, instrument.Symbol)
	}
	r.store.instruments[instrument.Symbol] = copyInstrument(instrument)

	return nil
}
