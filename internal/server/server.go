// Package server exposes the SCL front end as a gRPC service.
//
// Messages are google.protobuf.Struct values, so any gRPC client can call
// the service without generated stubs.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// Config holds server settings.
type Config struct {
	Addr           string
	MaxRecvMsgSize int
	MaxDepth       int // parser nesting limit
	Logger         *slog.Logger
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:9470",
		MaxRecvMsgSize: 4 << 20,
	}
}

// Server serves the Frontend and health services.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	config   Config
	logger   *slog.Logger
	listener net.Listener
}

// New creates a server. Extra options are appended to the defaults.
func New(cfg Config, opts ...grpc.ServerOption) *Server {
	if cfg.MaxRecvMsgSize <= 0 {
		cfg.MaxRecvMsgSize = DefaultConfig().MaxRecvMsgSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	serverOpts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			RequestIDInterceptor(),
			LoggingInterceptor(logger),
		),
	}
	serverOpts = append(serverOpts, opts...)

	s := &Server{
		grpc:   grpc.NewServer(serverOpts...),
		health: health.NewServer(),
		config: cfg,
		logger: logger,
	}
	RegisterFrontendServer(s.grpc, NewFrontend(cfg.MaxDepth, logger))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts connections on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.listener = lis
	s.logger.Info("serving", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(lis)
}

// Shutdown marks the services as not serving and stops gracefully,
// forcing the stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}

// Addr returns the listening address, or the configured one before Serve.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}
