package grpcapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every request at debug level and failures at warn level.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
		switch code {
		case codes.OK:
			zap.S().Debugw("gRPC request", fields...)
		case codes.Internal, codes.Unknown:
			zap.S().Errorw("gRPC request failed", append(fields, "error", err)...)
		default:
			zap.S().Warnw("gRPC request rejected", append(fields, "error", err)...)
		}
		return resp, err
	}
}

// RecoveryInterceptor turns a panicking handler into codes.Internal.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorw("Recovered from panic in handler", "method", info.FullMethod, "panic", r)
				err = status.Errorf(codes.Internal, "%s failed", info.FullMethod)
			}
		}()
		return handler(ctx, req)
	}
}
