// Package health exposes grpc.health.v1.Health driven by database reachability.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/authflow-server/internal/logger"
)

// pingTimeout bounds a single readiness probe.
const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service owns the overall serving status, keyed by the empty service name.
type Service struct {
	server *health.Server
	db     Pinger
	logger *logger.Logger
}

// New creates a Service that reports NOT_SERVING until the first successful probe.
func New(db Pinger, logger *logger.Logger) *Service {
	s := health.NewServer()
	s.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &Service{server: s, db: db, logger: logger}
}

// Register adds the health service to gs.
func (s *Service) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, s.server)
}

// Probe pings the database once and records the result.
func (s *Service) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("Health: database ping failed",
			"error", err.Error())
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.server.SetServingStatus("", st)
	return st
}

// Run probes immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Shutdown switches every service to NOT_SERVING and ignores later probes.
func (s *Service) Shutdown() {
	s.server.Shutdown()
}

// Check returns the current overall status.
func (s *Service) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.server.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
