// Package healthcheck serves the standard gRPC health protocol for orchestrator probes.
package healthcheck

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Server wraps a gRPC server exposing grpc.health.v1.Health.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	service    string
	checks     []Check
	logger     *slog.Logger
}

func NewServer(service string, logger *slog.Logger, checks ...Check) *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	s := &Server{
		grpcServer: gs,
		health:     hs,
		service:    service,
		checks:     checks,
		logger:     logger.With("component", "grpc_health"),
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)
}

// Refresh runs every check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.WarnContext(ctx, "Health check failed", "error", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Monitor refreshes the status every interval until ctx is cancelled.
func (s *Server) Monitor(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
