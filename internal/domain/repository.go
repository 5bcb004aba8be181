package domain

import (
	"context"
)

// InstrumentRepository defines the interface for instrument (price store) persistence operations
type InstrumentRepository interface {
	// GetAll retrieves every known instrument in registration order
	GetAll(ctx context.Context) ([]*Instrument, error)

	// GetBySymbol retrieves an instrument by its symbol
	// Returns an error wrapping ErrNotFound if the symbol is unknown
	GetBySymbol(ctx context.Context, symbol string) (*Instrument, error)

	// Upsert creates or replaces an instrument (last write wins)
	Upsert(ctx context.Context, instrument *Instrument) error
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByAPIKey retrieves the account owning an API credential
	GetByAPIKey(ctx context.Context, apiKey string) (*Account, error)

	// List retrieves every known account
	List(ctx context.Context) ([]*Account, error)

	// Upsert creates or replaces an account (last write wins)
	Upsert(ctx context.Context, account *Account) error
}

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	// GetByUserID retrieves the portfolio owned by userID
	GetByUserID(ctx context.Context, userID string) (*Portfolio, error)

	// Upsert creates or replaces a portfolio (last write wins)
	Upsert(ctx context.Context, portfolio *Portfolio) error
}

// LedgerRepository defines the interface for the append-only transaction log
type LedgerRepository interface {
	// Append adds a transaction to the end of the log
	Append(ctx context.Context, tx *Transaction) error

	// ListByUserID retrieves a user's transactions in append order
	ListByUserID(ctx context.Context, userID string) ([]*Transaction, error)
}

// TopicTradeCompleted is published with the completed *Transaction as payload
const TopicTradeCompleted = "trade.completed"

// Notifier publishes fire-and-forget notifications to interested listeners.
// Publish never reports listener failures back to the caller.
type Notifier interface {
	Publish(ctx context.Context, topic string, payload any)
}
