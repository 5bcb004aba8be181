package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "tradesim.v1.TradingService"

// TradingServer is the server API for tradesim.v1.TradingService.
// Every method exchanges google.protobuf.Struct messages.
type TradingServer interface {
	Buy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sell(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolio(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPerformance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeRisk(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecommendations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TechnicalAnalysis(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SimulateEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartSimulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopSimulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SimulationStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(TradingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// TradingServiceDesc is the grpc.ServiceDesc for tradesim.v1.TradingService
var TradingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TradingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Buy", TradingServer.Buy),
		unary("Sell", TradingServer.Sell),
		unary("ListTransactions", TradingServer.ListTransactions),
		unary("GetPortfolio", TradingServer.GetPortfolio),
		unary("GetPerformance", TradingServer.GetPerformance),
		unary("AnalyzeRisk", TradingServer.AnalyzeRisk),
		unary("GetRecommendations", TradingServer.GetRecommendations),
		unary("TechnicalAnalysis", TradingServer.TechnicalAnalysis),
		unary("SimulateEvent", TradingServer.SimulateEvent),
		unary("StartSimulation", TradingServer.StartSimulation),
		unary("StopSimulation", TradingServer.StopSimulation),
		unary("SimulationStatus", TradingServer.SimulationStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tradesim/v1/trading.proto",
}

// RegisterTradingServer registers srv on s
func RegisterTradingServer(s grpc.ServiceRegistrar, srv TradingServer) {
	s.RegisterService(&TradingServiceDesc, srv)
}

// FullMethod returns the "/service/method" path of a TradingService method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TradingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(TradingServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
