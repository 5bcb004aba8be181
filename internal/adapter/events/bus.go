package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/metrics"
)

// Listener handles one published payload.
// A returned error or a panic is logged by the bus and never reaches the publisher.
type Listener func(ctx context.Context, payload any) error

// Bus is an in-process publish/subscribe notifier.
// Every listener runs on its own goroutine so a slow or failing listener cannot
// hold up the publisher or the other listeners.
type Bus struct {
	logger *zap.Logger
	mu     sync.RWMutex
	subs   map[string][]Listener
	wg     sync.WaitGroup
}

var _ domain.Notifier = (*Bus)(nil)

// NewBus creates a new in-memory bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string][]Listener),
	}
}

// Subscribe registers a listener for a topic
func (b *Bus) Subscribe(topic string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], listener)
	b.logger.Info("Subscribed listener to topic", zap.String("topic", topic))
}

// Publish dispatches payload to every listener of topic and returns immediately
func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	metrics.EventsPublished.WithLabelValues(topic).Inc()

	b.mu.RLock()
	listeners := append([]Listener{}, b.subs[topic]...)
	b.mu.RUnlock()

	if len(listeners) == 0 {
		b.logger.Debug("No listeners for topic", zap.String("topic", topic))
		return
	}

	// Listeners outlive the request that triggered them
	ctx = context.WithoutCancel(ctx)

	for _, listener := range listeners {
		b.wg.Add(1)
		go func(l Listener) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					metrics.ListenerFailures.WithLabelValues(topic).Inc()
					b.logger.Error("Listener panic", zap.Any("recover", r), zap.String("topic", topic))
				}
			}()

			if err := l(ctx, payload); err != nil {
				metrics.ListenerFailures.WithLabelValues(topic).Inc()
				b.logger.Warn("Listener failed", zap.String("topic", topic), zap.Error(err))
			}
		}(listener)
	}
}

// Wait blocks until every dispatched listener has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TradeMetricsListener feeds completed trades into the traded notional counter
func TradeMetricsListener(ctx context.Context, payload any) error {
	tx, ok := payload.(*domain.Transaction)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	metrics.TradedNotional.WithLabelValues(string(tx.Side)).Add(tx.GrossAmount().InexactFloat64())
	return nil
}

// NewTradeAuditListener logs every completed trade
func NewTradeAuditListener(logger *zap.Logger) Listener {
	return func(ctx context.Context, payload any) error {
		tx, ok := payload.(*domain.Transaction)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", payload)
		}

		logger.Info("Trade completed",
			zap.String("transaction_id", tx.ID),
			zap.String("user_id", tx.UserID),
			zap.String("side", string(tx.Side)),
			zap.String("symbol", tx.Symbol),
			zap.String("quantity", tx.Quantity.String()),
			zap.String("price", tx.Price.String()),
			zap.String("fee", tx.Fee.String()),
		)
		return nil
	}
}
