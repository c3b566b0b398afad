package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RoomsService is the name probes use to ask about the room service specifically.
const RoomsService = "huddle.Rooms"

// HealthServer serves the standard gRPC health protocol for orchestrators and load balancers.
type HealthServer struct {
	srv      *grpc.Server
	health   *health.Server
	listener net.Listener
	log      *slog.Logger
}

func NewHealthServer(listener net.Listener, log *slog.Logger) *HealthServer {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	return &HealthServer{srv: srv, health: h, listener: listener, log: log}
}

func (s *HealthServer) Run(ctx context.Context) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(RoomsService, healthpb.HealthCheckResponse_SERVING)

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting gRPC health server", "address", s.listener.Addr().String())
		if err := s.srv.Serve(s.listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.srv.GracefulStop()
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}
