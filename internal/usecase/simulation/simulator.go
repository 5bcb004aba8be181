package simulation

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/metrics"
)

// pricePlaces bounds the precision of simulated prices
const pricePlaces = 4

// maxVolumeIncrement bounds the volume added to an instrument by one tick
const maxVolumeIncrement = 10000

// Config holds the market simulator settings
type Config struct {
	TickInterval     time.Duration
	VolatilityFactor float64
}

// Status reports the state of the continuous simulation
type Status struct {
	Running   bool
	LastTick  *time.Time
	TickCount int64
}

// Simulator evolves instrument prices and keeps portfolios valued at the live prices.
// Every tick and every event runs under Lock together with its revaluation pass.
// Rand is only drawn from while Lock is held.
type Simulator struct {
	InstrumentRepo domain.InstrumentRepository
	AccountRepo    domain.AccountRepository
	PortfolioRepo  domain.PortfolioRepository
	Config         Config
	Rand           domain.RandomSource
	Lock           sync.Locker
	Logger         *zap.Logger
	Now            func() time.Time

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	lastTick  *time.Time
	tickCount int64
}

// NewSimulator creates a new Simulator instance
func NewSimulator(
	instrumentRepo domain.InstrumentRepository,
	accountRepo domain.AccountRepository,
	portfolioRepo domain.PortfolioRepository,
	cfg Config,
	rnd domain.RandomSource,
	lock sync.Locker,
	logger *zap.Logger,
) *Simulator {
	return &Simulator{
		InstrumentRepo: instrumentRepo,
		AccountRepo:    accountRepo,
		PortfolioRepo:  portfolioRepo,
		Config:         cfg,
		Rand:           rnd,
		Lock:           lock,
		Logger:         logger,
		Now:            time.Now,
	}
}

// Tick applies one random-walk step to every instrument
// Logic:
//  1. For each instrument draw r uniformly in [-1, 1]
//  2. newPrice = max(price + price*r*volatility, 0.01)
//  3. volume += floor(u * 10000) for a second uniform draw u
//  4. Revalue every non-empty portfolio at the new prices
func (s *Simulator) Tick(ctx context.Context) error {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	now := s.Now()
	err := s.reprice(ctx, now, func(inst *domain.Instrument) decimal.Decimal {
		r := s.Rand.Float64()*2 - 1
		inst.Volume += int64(math.Floor(s.Rand.Float64() * maxVolumeIncrement))
		move := decimal.NewFromFloat(r * s.Config.VolatilityFactor)
		return inst.Price.Add(inst.Price.Mul(move))
	})
	if err != nil {
		return err
	}

	metrics.MarketTicks.Inc()

	s.mu.Lock()
	s.lastTick = &now
	s.tickCount++
	s.mu.Unlock()

	return nil
}

// SimulateEvent applies a named shock to every instrument
// Logic:
//  1. Reject unknown event names before touching anything
//  2. For each instrument draw a fresh impact from the event's range
//  3. newPrice = max(price * (1 + impact), 0.01)
//  4. Revalue every non-empty portfolio at the new prices
func (s *Simulator) SimulateEvent(ctx context.Context, name string) error {
	event, err := ParseEvent(name)
	if err != nil {
		return err
	}

	s.Lock.Lock()
	defer s.Lock.Unlock()

	s.Logger.Info("Simulating market event", zap.String("event", string(event)))

	err = s.reprice(ctx, s.Now(), func(inst *domain.Instrument) decimal.Decimal {
		impact := event.Impact(s.Rand.Float64())
		return inst.Price.Mul(decimal.NewFromFloat(1 + impact))
	})
	if err != nil {
		return err
	}

	metrics.MarketEvents.WithLabelValues(string(event)).Inc()
	return nil
}

// reprice moves every instrument to next(instrument) and revalues the portfolios.
// New prices are computed and validated for all instruments before the first write.
func (s *Simulator) reprice(ctx context.Context, now time.Time, next func(*domain.Instrument) decimal.Decimal) error {
	instruments, err := s.InstrumentRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, inst := range instruments {
		inst.Reprice(next(inst).Round(pricePlaces), now)
		if err := inst.Validate(); err != nil {
			return err
		}
	}

	for _, inst := range instruments {
		if err := s.InstrumentRepo.Upsert(ctx, inst); err != nil {
			return err
		}
		metrics.InstrumentPrice.WithLabelValues(inst.Symbol).Set(inst.Price.InexactFloat64())
	}

	s.revalueAll(ctx, domain.PriceMap(instruments), now)
	return nil
}

// revalueAll revalues the non-empty portfolio of every known account.
// A portfolio that cannot be revalued is logged and left as it was.
func (s *Simulator) revalueAll(ctx context.Context, prices map[string]decimal.Decimal, now time.Time) {
	accounts, err := s.AccountRepo.List(ctx)
	if err != nil {
		s.Logger.Error("Failed to list accounts for revaluation", zap.Error(err))
		return
	}

	for _, account := range accounts {
		portfolio, err := s.PortfolioRepo.GetByUserID(ctx, account.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			s.Logger.Warn("Failed to load portfolio", zap.String("user_id", account.ID), zap.Error(err))
			continue
		}
		if len(portfolio.Holdings) == 0 {
			continue
		}

		if err := portfolio.Revalue(prices, now); err != nil {
			s.Logger.Warn("Failed to revalue portfolio", zap.String("user_id", account.ID), zap.Error(err))
			continue
		}
		if err := s.PortfolioRepo.Upsert(ctx, portfolio); err != nil {
			s.Logger.Warn("Failed to persist portfolio", zap.String("user_id", account.ID), zap.Error(err))
		}
	}
}

// Start launches the continuous simulation. Starting a running simulation is a no-op.
// The simulation stops on Stop or when ctx is cancelled.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		s.Logger.Info("Market simulation is already running")
		return
	}
	if s.cancel != nil {
		s.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	metrics.SimulationRunning.Set(1)

	s.Logger.Info("Starting market simulation", zap.Duration("interval", s.Config.TickInterval))
	go s.run(loopCtx, s.done)
}

// Stop halts the continuous simulation and waits for an in-flight tick to finish.
// Stopping a stopped simulation is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	running := s.runningLocked()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if !running {
		if cancel != nil {
			cancel()
		}
		metrics.SimulationRunning.Set(0)
		s.Logger.Info("Market simulation is not running")
		return
	}

	cancel()
	<-done
	metrics.SimulationRunning.Set(0)
	s.Logger.Info("Market simulation stopped")
}

// Status reports whether the simulation runs and when it last ticked
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.runningLocked(), TickCount: s.tickCount}
	if s.lastTick != nil {
		last := *s.lastTick
		status.LastTick = &last
	}
	return status
}

// runningLocked reports whether the loop goroutine is alive; s.mu must be held.
// A loop whose parent context was cancelled counts as stopped.
func (s *Simulator) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.Config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.Logger.Error("Market tick failed", zap.Error(err))
			}
		}
	}
}
