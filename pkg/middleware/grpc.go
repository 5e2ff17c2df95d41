package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// traceIDMetadataKey 上游通过 metadata 传入的 trace ID
const traceIDMetadataKey = "x-trace-id"

// GRPCLoggingInterceptor gRPC 日志拦截器，与 GinLoggingMiddleware 写入相同的 context 字段
func GRPCLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		traceID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(traceIDMetadataKey); len(v) > 0 {
				traceID = v[0]
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx = logger.ContextWithRequestID(ctx, uuid.New().String())
		ctx = logger.ContextWithTraceID(ctx, traceID)

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn(ctx, "gRPC request failed",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration", time.Since(start),
				"error", err,
			)
			return resp, err
		}
		logger.Debug(ctx, "gRPC request completed", "method", info.FullMethod, "duration", time.Since(start))
		return resp, nil
	}
}

// GRPCRecoveryInterceptor panic 转为 codes.Internal
func GRPCRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "gRPC request panicked", "method", info.FullMethod, "panic", r)
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
