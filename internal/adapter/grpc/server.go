package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/tradesim-backend/internal/domain"
	"github.com/simaogato/tradesim-backend/internal/usecase/analysis"
	"github.com/simaogato/tradesim-backend/internal/usecase/dashboard"
	"github.com/simaogato/tradesim-backend/internal/usecase/simulation"
	"github.com/simaogato/tradesim-backend/internal/usecase/trading"
)

// Server implements the TradingService gRPC server
type Server struct {
	TradingService   *trading.TradingService
	AnalysisService  *analysis.AnalysisService
	DashboardService *dashboard.DashboardService
	Simulator        *simulation.Simulator

	// simulationCtx outlives individual calls so StartSimulation keeps running after it returns
	simulationCtx context.Context
}

var _ TradingServer = (*Server)(nil)

// NewServer creates a new gRPC server instance.
// ctx bounds the lifetime of simulations started through StartSimulation.
func NewServer(
	ctx context.Context,
	tradingService *trading.TradingService,
	analysisService *analysis.AnalysisService,
	dashboardService *dashboard.DashboardService,
	simulator *simulation.Simulator,
) *Server {
	return &Server{
		TradingService:   tradingService,
		AnalysisService:  analysisService,
		DashboardService: dashboardService,
		Simulator:        simulator,
		simulationCtx:    ctx,
	}
}

// Buy handles the Buy RPC
func (s *Server) Buy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.trade(ctx, req, s.TradingService.Buy)
}

// Sell handles the Sell RPC
func (s *Server) Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.trade(ctx, req, s.TradingService.Sell)
}

func (s *Server) trade(
	ctx context.Context,
	req *structpb.Struct,
	execute func(context.Context, trading.TradeInput) (*domain.Transaction, error),
) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	symbol, err := stringField(req, "symbol")
	if err != nil {
		return nil, err
	}

	quantity, err := decimalField(req, "quantity")
	if err != nil {
		return nil, err
	}

	tx, err := execute(ctx, trading.TradeInput{
		UserID:   userID,
		Symbol:   symbol,
		Quantity: quantity,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"transaction": transactionFields(tx),
	})
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.TradingService.History(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]interface{}, 0, len(txs))
	for _, tx := range txs {
		list = append(list, transactionFields(tx))
	}

	return newStruct(map[string]interface{}{
		"transactions": list,
	})
}

// GetPortfolio handles the GetPortfolio RPC
func (s *Server) GetPortfolio(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.DashboardService.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(portfolioFields(portfolio))
}

// GetPerformance handles the GetPerformance RPC
func (s *Server) GetPerformance(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.DashboardService.GetPerformance(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(performanceFields(result))
}

// AnalyzeRisk handles the AnalyzeRisk RPC
func (s *Server) AnalyzeRisk(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.AnalysisService.AnalyzePortfolioRisk(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(riskFields(result))
}

// GetRecommendations handles the GetRecommendations RPC
func (s *Server) GetRecommendations(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.AnalysisService.GenerateRecommendations(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"recommendations": recommendationList(recs),
	})
}

// TechnicalAnalysis handles the TechnicalAnalysis RPC
func (s *Server) TechnicalAnalysis(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, err := stringField(req, "symbol")
	if err != nil {
		return nil, err
	}

	result, err := s.AnalysisService.TechnicalAnalysis(ctx, symbol)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(technicalFields(result))
}

// SimulateEvent handles the SimulateEvent RPC
func (s *Server) SimulateEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	event, err := stringField(req, "event")
	if err != nil {
		return nil, err
	}

	if err := s.Simulator.SimulateEvent(ctx, event); err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"event": event,
	})
}

// StartSimulation handles the StartSimulation RPC
func (s *Server) StartSimulation(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.Simulator.Start(s.simulationCtx)
	return newStruct(statusFields(s.Simulator.Status()))
}

// StopSimulation handles the StopSimulation RPC
func (s *Server) StopSimulation(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.Simulator.Stop()
	return newStruct(statusFields(s.Simulator.Status()))
}

// SimulationStatus handles the SimulationStatus RPC
func (s *Server) SimulationStatus(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(statusFields(s.Simulator.Status()))
}

func requireUser(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing user")
	}
	return userID, nil
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientHoldings):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
