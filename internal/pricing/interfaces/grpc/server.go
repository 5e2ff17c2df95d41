// Package grpc 提供 gRPC 健康检查与反射服务，供服务网格与 grpcurl 探测
package grpc

import (
	"context"
	"net"

	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 健康检查中登记的服务名
const ServiceName = "optionpricing.v1.PricingService"

// Server gRPC 服务端
type Server struct {
	srv    *grpc.Server
	health *health.Server
}

// NewServer 创建注册了 health 与 reflection 的 gRPC 服务端，初始状态为 NOT_SERVING
func NewServer(opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
		),
	}, opts...)
	s := &Server{
		srv:    grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)
	s.SetServing(false)
	return s
}

// SetServing 同时更新整体状态与 ServiceName 的状态
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve 阻塞直到 listener 关闭或 Stop 被调用
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.SetServing(true)
	logger.Info(ctx, "gRPC server listening", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Stop 先把健康状态置为 NOT_SERVING，再优雅停止
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
