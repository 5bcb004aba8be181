package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/metrics"
)

func TestBus_DeliversToEveryListener(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("trade.completed", func(ctx context.Context, payload any) error {
			assert.Equal(t, "hello", payload)
			calls.Add(1)
			return nil
		})
	}
	bus.Subscribe("other", func(ctx context.Context, payload any) error {
		t.Error("listener of another topic must not be called")
		return nil
	})

	bus.Publish(context.Background(), "trade.completed", "hello")
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_FailingListenersAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := NewBus(zap.New(core))

	var delivered atomic.Bool
	bus.Subscribe("t", func(ctx context.Context, payload any) error {
		return errors.New("listener down")
	})
	bus.Subscribe("t", func(ctx context.Context, payload any) error {
		panic("boom")
	})
	bus.Subscribe("t", func(ctx context.Context, payload any) error {
		delivered.Store(true)
		return nil
	})

	before := testutil.ToFloat64(metrics.ListenerFailures.WithLabelValues("t"))

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), "t", nil)
		bus.Wait()
	})

	assert.True(t, delivered.Load())
	assert.Equal(t, 1, logs.FilterMessage("Listener failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Listener panic").Len())
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ListenerFailures.WithLabelValues("t")))
}

func TestBus_PublishDoesNotWaitForListeners(t *testing.T) {
	bus := NewBus(zap.NewNop())
	release := make(chan struct{})
	bus.Subscribe("slow", func(ctx context.Context, payload any) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), "slow", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow listener")
	}

	close(release)
	bus.Wait()
}

func TestBus_ListenerContextSurvivesCancellation(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var ctxErr atomic.Value
	started := make(chan struct{})
	bus.Subscribe("t", func(lctx context.Context, payload any) error {
		<-started
		ctxErr.Store(lctx.Err() == nil)
		return nil
	})

	bus.Publish(ctx, "t", nil)
	cancel()
	close(started)
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}

func TestTradeMetricsListener(t *testing.T) {
	tx := domain.NewTransaction(domain.OrderSideSell, "demo_user", "AAPL", decimal.NewFromInt(5), decimal.NewFromInt(120), decimal.NewFromInt(6), time.Now())
	before := testutil.ToFloat64(metrics.TradedNotional.WithLabelValues("sell"))

	require.NoError(t, TradeMetricsListener(context.Background(), tx))

	assert.Equal(t, before+600, testutil.ToFloat64(metrics.TradedNotional.WithLabelValues("sell")))
	assert.Error(t, TradeMetricsListener(context.Background(), "not a transaction"))
}

func TestTradeAuditListener(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	listener := NewTradeAuditListener(zap.New(core))
	tx := domain.NewTransaction(domain.OrderSideBuy, "demo_user", "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), time.Now())

	require.NoError(t, listener(context.Background(), tx))

	entries := logs.FilterMessage("Trade completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, tx.ID, entries[0].ContextMap()["transaction_id"])
	assert.Equal(t, "AAPL", entries[0].ContextMap()["symbol"])
}
