package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"org-membership-service/internal/server/interceptors"
)

// NewGRPCServer returns a gRPC server instrumented with OpenTelemetry that records the caller's
// IP in every request context, along with the health server registered on it.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.ClientIPUnary()),
	)
	hs := health.NewServer()
	RegisterServices(s, hs)
	return s, hs
}

// RegisterServices registers the gRPC services with s. Only grpc.health.v1.Health is served
// over gRPC; the account and organization API is HTTP.
func RegisterServices(s grpc.ServiceRegistrar, hs *health.Server) {
	healthpb.RegisterHealthServer(s, hs)
}
