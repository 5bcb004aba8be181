package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// healthPrefix is the method prefix of the standard health service, served without credentials
const healthPrefix = "/grpc.health.v1.Health/"

type userIDKey struct{}

// WithUserID returns a context carrying the authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user ID stored by AuthInterceptor
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// AuthInterceptor returns a gRPC unary server interceptor that resolves
// the API key in the authorization metadata to an account.
// If the key is missing or unknown, it returns status.Unauthenticated.
// If valid, it calls the handler with the account ID stored in the context.
func AuthInterceptor(accounts domain.AccountRepository) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		apiKey := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer "))
		account, err := accounts.GetByAPIKey(ctx, apiKey)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, status.Error(codes.Unauthenticated, "invalid api key")
			}
			return nil, status.Error(codes.Internal, "failed to resolve api key")
		}

		return handler(WithUserID(ctx, account.ID), req)
	}
}

// LoggingInterceptor logs every unary call with its status code and duration
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", time.Since(start)),
		}

		switch code {
		case codes.OK:
			logger.Debug("gRPC call", fields...)
		case codes.Internal, codes.Unknown:
			logger.Error("gRPC call failed", append(fields, zap.Error(err))...)
		default:
			logger.Info("gRPC call rejected", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}

// RecoveryInterceptor converts a handler panic into codes.Internal and logs it
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panic", zap.Any("recover", r), zap.String("method", info.FullMethod))
				resp = nil
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}
