// Package grpc exposes the employee and user services as the
// simplog.v1.Directory gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/rpc"
	"github.com/dmitrijs2005/simplog/internal/server/auth"
	"github.com/dmitrijs2005/simplog/internal/server/metrics"
	"github.com/dmitrijs2005/simplog/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address   string
	users     *services.UserService
	employees *services.EmployeeService
	issuer    *auth.Issuer
	logger    logging.Logger
	metrics   metrics.Recorder
	limiter   *PeerLimiter
	health    *health.Server
}

// Option configures a GRPCServer.
type Option func(*GRPCServer)

// WithMetrics reports per-RPC counters and latency to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *GRPCServer) { s.metrics = r }
}

// WithAuthRateLimit limits credential RPCs to perMinute requests per peer.
// Zero disables the limit.
func WithAuthRateLimit(perMinute int) Option {
	return func(s *GRPCServer) {
		if perMinute > 0 {
			s.limiter = NewPeerLimiter(perMinute)
		} else {
			s.limiter = nil
		}
	}
}

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, es *services.EmployeeService,
	issuer *auth.Issuer, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		employees: es,
		issuer:    issuer,
		metrics:   metrics.Nop{},
		health:    health.NewServer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newServer builds the grpc.Server with interceptors and services registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.observeInterceptor,
		s.rateLimitInterceptor,
		s.accessTokenInterceptor,
	))

	rpc.RegisterDirectoryServer(srv, &directoryHandler{s: s})
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
