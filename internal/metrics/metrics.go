package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TradesExecuted counts completed trades by side (buy/sell)
var TradesExecuted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tradesim_trades_executed_total",
		Help: "Total number of trades completed by the trading engine",
	},
	[]string{"side"},
)

// TradesRejected counts trades that failed before any write, by side and reason
var TradesRejected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tradesim_trades_rejected_total",
		Help: "Total number of trades rejected by the trading engine",
	},
	[]string{"side", "reason"},
)

// TradeLatency records how long a trade holds the execution lock
var TradeLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "tradesim_trade_latency_seconds",
		Help:    "Latency in seconds to execute individual trades",
		Buckets: prometheus.DefBuckets,
	},
)

// TradedNotional sums the gross amount of completed trades, fed by the trade.completed listener
var TradedNotional = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tradesim_traded_notional_total",
		Help: "Gross amount of completed trades",
	},
	[]string{"side"},
)

// Market simulator metrics
var (
	MarketTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradesim_market_ticks_total",
			Help: "Number of random-walk ticks applied to the market",
		},
	)

	MarketEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesim_market_events_total",
			Help: "Number of shock events applied to the market",
		},
		[]string{"event"},
	)

	SimulationRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradesim_simulation_running",
			Help: "1 while the continuous simulation is running",
		},
	)

	InstrumentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradesim_instrument_price",
			Help: "Last simulated price per instrument",
		},
		[]string{"symbol"},
	)
)

// Notification metrics
var (
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesim_events_published_total",
			Help: "Number of notifications published per topic",
		},
		[]string{"topic"},
	)

	ListenerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesim_listener_failures_total",
			Help: "Number of listener errors and panics per topic",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(TradesExecuted, TradesRejected, TradeLatency, TradedNotional)
	prometheus.MustRegister(MarketTicks, MarketEvents, SimulationRunning, InstrumentPrice)
	prometheus.MustRegister(EventsPublished, ListenerFailures)
}
