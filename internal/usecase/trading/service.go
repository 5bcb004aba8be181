package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/metrics"
	"github.com/simaogato/tradesim-backend/internal/usecase/fee"
)

// TradeInput represents a market order for a user
type TradeInput struct {
	UserID   string
	Symbol   string
	Quantity decimal.Decimal
}

// TradingService executes buy and sell orders against the stores.
// Lock is shared with the market simulator so a trade never interleaves with a
// tick or shock and its revaluation pass.
type TradingService struct {
	InstrumentRepo domain.InstrumentRepository
	AccountRepo    domain.AccountRepository
	PortfolioRepo  domain.PortfolioRepository
	LedgerRepo     domain.LedgerRepository
	Fees           fee.Policy
	Notifier       domain.Notifier
	Lock           sync.Locker
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewTradingService creates a new TradingService instance
func NewTradingService(
	instrumentRepo domain.InstrumentRepository,
	accountRepo domain.AccountRepository,
	portfolioRepo domain.PortfolioRepository,
	ledgerRepo domain.LedgerRepository,
	fees fee.Policy,
	notifier domain.Notifier,
	lock sync.Locker,
	logger *zap.Logger,
) *TradingService {
	return &TradingService{
		InstrumentRepo: instrumentRepo,
		AccountRepo:    accountRepo,
		PortfolioRepo:  portfolioRepo,
		LedgerRepo:     ledgerRepo,
		Fees:           fees,
		Notifier:       notifier,
		Lock:           lock,
		Logger:         logger,
		Now:            time.Now,
	}
}

// Buy purchases quantity units of symbol at the live price
// Logic:
//  1. Resolve account and instrument (NotFound if absent)
//  2. gross = price * quantity, fee = BuyFee(gross), totalCost = gross + fee
//  3. Fail with InsufficientFunds if balance < totalCost
//  4. Stage the debit and the holding update (weighted average price), revalue the portfolio
//  5. Create the transaction and mark it completed
//  6. Persist account, portfolio and ledger entry, then notify listeners
//
// Nothing is written until every check has passed.
func (s *TradingService) Buy(ctx context.Context, input TradeInput) (*domain.Transaction, error) {
	tx, err := s.execute(ctx, domain.OrderSideBuy, input, s.stageBuy)
	s.record(domain.OrderSideBuy, err)
	return tx, err
}

// Sell disposes of quantity units of symbol at the live price
// Logic:
//  1. Resolve account, instrument and portfolio (NotFound if absent)
//  2. Fail with InsufficientHoldings if the holding is absent or too small
//  3. gross = price * quantity, fee = SellFee(gross), net = gross - fee
//  4. Stage the holding decrement (dropped at zero, average price unchanged) and revalue
//  5. Create and complete the transaction, stage the credit of net
//  6. Persist portfolio, account and ledger entry, then notify listeners
func (s *TradingService) Sell(ctx context.Context, input TradeInput) (*domain.Transaction, error) {
	tx, err := s.execute(ctx, domain.OrderSideSell, input, s.stageSell)
	s.record(domain.OrderSideSell, err)
	return tx, err
}

// History returns the user's completed transactions in execution order
func (s *TradingService) History(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if _, err := s.AccountRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.LedgerRepo.ListByUserID(ctx, userID)
}

// trade carries the state of one order from resolution to commit
type trade struct {
	input      TradeInput
	account    *domain.Account
	instrument *domain.Instrument
	portfolio  *domain.Portfolio
	prices     map[string]decimal.Decimal
	tx         *domain.Transaction

	accountBefore   domain.Account
	portfolioBefore *domain.Portfolio
}

type stageFunc func(ctx context.Context, t *trade) error

func (s *TradingService) execute(ctx context.Context, side domain.OrderSide, input TradeInput, stage stageFunc) (*domain.Transaction, error) {
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", domain.ErrInvalidArgument, input.Quantity)
	}

	timer := prometheus.NewTimer(metrics.TradeLatency)
	defer timer.ObserveDuration()

	s.Lock.Lock()
	defer s.Lock.Unlock()

	t := &trade{input: input}

	account, err := s.AccountRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	t.account = account
	t.accountBefore = *account

	instrument, err := s.InstrumentRepo.GetBySymbol(ctx, input.Symbol)
	if err != nil {
		return nil, err
	}
	t.instrument = instrument

	instruments, err := s.InstrumentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	t.prices = domain.PriceMap(instruments)

	if err := stage(ctx, t); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	s.Notifier.Publish(ctx, domain.TopicTradeCompleted, t.tx)

	s.Logger.Debug("Trade executed",
		zap.String("transaction_id", t.tx.ID),
		zap.String("side", string(side)),
		zap.String("user_id", input.UserID),
		zap.String("symbol", input.Symbol),
	)

	return t.tx, nil
}

func (s *TradingService) stageBuy(ctx context.Context, t *trade) error {
	now := s.Now()
	price := t.instrument.Price
	gross := price.Mul(t.input.Quantity)
	feeAmount := s.Fees.BuyFee(gross)
	totalCost := gross.Add(feeAmount)

	if !t.account.CanAfford(totalCost) {
		return &domain.InsufficientFundsError{
			UserID:    t.account.ID,
			Symbol:    t.input.Symbol,
			Required:  totalCost,
			Available: t.account.Balance,
		}
	}

	portfolio, err := s.PortfolioRepo.GetByUserID(ctx, t.input.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		portfolio = domain.NewPortfolio(t.input.UserID, now)
	case err != nil:
		return err
	}
	t.portfolioBefore = portfolio.Clone()

	if err := t.account.Debit(totalCost); err != nil {
		return err
	}
	if err := portfolio.AddHolding(t.input.Symbol, t.input.Quantity, price); err != nil {
		return err
	}
	if err := portfolio.Revalue(t.prices, now); err != nil {
		return err
	}
	t.portfolio = portfolio

	t.tx = domain.NewTransaction(domain.OrderSideBuy, t.input.UserID, t.input.Symbol, t.input.Quantity, price, feeAmount, now)
	return t.tx.Complete(now)
}

func (s *TradingService) stageSell(ctx context.Context, t *trade) error {
	now := s.Now()
	price := t.instrument.Price

	portfolio, err := s.PortfolioRepo.GetByUserID(ctx, t.input.UserID)
	if err != nil {
		return err
	}
	t.portfolioBefore = portfolio.Clone()

	if err := portfolio.RemoveHolding(t.input.Symbol, t.input.Quantity); err != nil {
		return err
	}

	gross := price.Mul(t.input.Quantity)
	feeAmount := s.Fees.SellFee(gross)
	net := gross.Sub(feeAmount)

	if err := portfolio.Revalue(t.prices, now); err != nil {
		return err
	}
	t.portfolio = portfolio

	t.tx = domain.NewTransaction(domain.OrderSideSell, t.input.UserID, t.input.Symbol, t.input.Quantity, price, feeAmount, now)
	if err := t.tx.Complete(now); err != nil {
		return err
	}

	// A minimum fee larger than the proceeds turns the sale into a charge
	if net.IsNegative() {
		if !t.account.CanAfford(net.Neg()) {
			return &domain.InsufficientFundsError{
				UserID:    t.account.ID,
				Symbol:    t.input.Symbol,
				Required:  net.Neg(),
				Available: t.account.Balance,
			}
		}
		return t.account.Debit(net.Neg())
	}
	return t.account.Credit(net)
}

// commit writes the staged records. A failed write restores the records
// already written so no partial trade stays visible.
func (s *TradingService) commit(ctx context.Context, t *trade) error {
	if err := s.AccountRepo.Upsert(ctx, t.account); err != nil {
		return fmt.Errorf("failed to persist account: %w", err)
	}

	if err := s.PortfolioRepo.Upsert(ctx, t.portfolio); err != nil {
		s.restoreAccount(ctx, t)
		return fmt.Errorf("failed to persist portfolio: %w", err)
	}

	if err := s.LedgerRepo.Append(ctx, t.tx); err != nil {
		s.restoreAccount(ctx, t)
		s.restorePortfolio(ctx, t)
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

func (s *TradingService) restoreAccount(ctx context.Context, t *trade) {
	before := t.accountBefore
	if err := s.AccountRepo.Upsert(ctx, &before); err != nil {
		s.Logger.Error("Failed to restore account after aborted trade",
			zap.String("user_id", before.ID), zap.Error(err))
	}
}

func (s *TradingService) restorePortfolio(ctx context.Context, t *trade) {
	if err := s.PortfolioRepo.Upsert(ctx, t.portfolioBefore); err != nil {
		s.Logger.Error("Failed to restore portfolio after aborted trade",
			zap.String("user_id", t.portfolioBefore.UserID), zap.Error(err))
	}
}

func (s *TradingService) record(side domain.OrderSide, err error) {
	if err == nil {
		metrics.TradesExecuted.WithLabelValues(string(side)).Inc()
		return
	}
	metrics.TradesRejected.WithLabelValues(string(side), reasonOf(err)).Inc()
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return "insufficient_holdings"
	default:
		return "internal"
	}
}
