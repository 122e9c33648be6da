// Package server provides gRPC server lifecycle management for the decision
// service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/solatis/decisiontree/internal/core/api"
	"github.com/solatis/decisiontree/internal/core/auth"
	"github.com/solatis/decisiontree/internal/core/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config config.ServerConfig
	logger *slog.Logger
}

// NewGRPCServer creates the server with logging, timeout and auth
// interceptors (in that order) and registers the decision and health
// services.
func NewGRPCServer(cfg *config.ServerConfig, handler api.DecisionServiceServer, authenticator *auth.Authenticator, logger *slog.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			TimeoutInterceptor(cfg.RequestTimeout),
			authenticator.UnaryInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.MaxConnections)),
		grpc.MaxRecvMsgSize(cfg.MaxMessageSize),
		grpc.MaxSendMsgSize(cfg.MaxMessageSize),
	}

	server := grpc.NewServer(opts...)
	api.RegisterDecisionServiceServer(server, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: *cfg,
		logger: logger,
	}, nil
}

// Addr is the configured listen address.
func (s *GRPCServer) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.Addr(), err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on lis until Shutdown.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("serving decision service", "addr", lis.Addr().String())
	return s.server.Serve(lis)
}

// Shutdown marks the server NOT_SERVING, then stops gracefully. In-flight
// calls get until ctx expires or 30 seconds, whichever comes first.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
