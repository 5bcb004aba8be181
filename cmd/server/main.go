package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/tradesim-backend/internal/adapter/events"
	grpcadapter "github.com/simaogato/tradesim-backend/internal/adapter/grpc"
	"github.com/simaogato/tradesim-backend/internal/adapter/repository/memory"
	"github.com/simaogato/tradesim-backend/internal/config"
	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/logger"
	"github.com/simaogato/tradesim-backend/internal/usecase/analysis"
	"github.com/simaogato/tradesim-backend/internal/usecase/dashboard"
	"github.com/simaogato/tradesim-backend/internal/usecase/seeder"
	"github.com/simaogato/tradesim-backend/internal/usecase/simulation"
	"github.com/simaogato/tradesim-backend/internal/usecase/trading"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration (.env is optional)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Repositories (in-memory)
	store := memory.NewStore()
	instrumentRepo := memory.NewInstrumentRepository(store)
	accountRepo := memory.NewAccountRepository(store)
	portfolioRepo := memory.NewPortfolioRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)

	systemSeeder := seeder.NewSystemSeeder(instrumentRepo, accountRepo, portfolioRepo, cfg.InstrumentSeeds())
	if err := systemSeeder.Seed(ctx); err != nil {
		zapLogger.Fatal("Failed to seed market and demo accounts", zap.Error(err))
	}
	zapLogger.Info("Market and demo accounts seeded", zap.Int("instruments", len(cfg.Market.Instruments)))

	// 3. Initialize Services (Use Cases)
	// Trades and market moves serialise on one lock
	executionLock := &sync.Mutex{}

	bus := events.NewBus(zapLogger)
	bus.Subscribe(domain.TopicTradeCompleted, events.TradeMetricsListener)
	bus.Subscribe(domain.TopicTradeCompleted, events.NewTradeAuditListener(zapLogger))

	tradingService := trading.NewTradingService(
		instrumentRepo, accountRepo, portfolioRepo, ledgerRepo,
		cfg.FeePolicy(), bus, executionLock, zapLogger,
	)
	simulator := simulation.NewSimulator(
		instrumentRepo, accountRepo, portfolioRepo,
		cfg.SimulatorConfig(), newRand(), executionLock, zapLogger,
	)
	analysisService := analysis.NewAnalysisService(instrumentRepo, accountRepo, portfolioRepo, newRand())
	dashboardService := dashboard.NewDashboardService(instrumentRepo, accountRepo, portfolioRepo)

	if cfg.Simulation.Autostart {
		simulator.Start(ctx)
	}

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(zapLogger),
			grpcadapter.LoggingInterceptor(zapLogger),
			grpcadapter.AuthInterceptor(accountRepo),
		),
	)

	grpcadapter.RegisterTradingServer(grpcServer, grpcadapter.NewServer(
		ctx, tradingService, analysisService, dashboardService, simulator,
	))
	healthpb.RegisterHealthServer(grpcServer, health.NewServer())
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		zapLogger.Fatal("Failed to listen", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}

	go func() {
		zapLogger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			zapLogger.Fatal("Failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 5. Expose Prometheus metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLogger.Info("Metrics server listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to serve metrics", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(zapLogger)

	simulator.Stop()
	cancel()
	grpcServer.GracefulStop()
	zapLogger.Info("gRPC server stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("Metrics server shutdown failed", zap.Error(err))
	}

	bus.Wait()
	zapLogger.Info("Shutdown complete")
}

// newRand returns an independently seeded random source
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// waitForShutdown blocks until SIGTERM or SIGINT
func waitForShutdown(logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))
}
