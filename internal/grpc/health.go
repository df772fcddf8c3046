package grpc

import (
	"context"
	"log/slog"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Desoltijfl/checador-demo/internal/logging"
)

// ServiceName is the name reported by the health service alongside the overall "" entry.
const ServiceName = "checador"

type Server struct {
	grpc   *gogrpc.Server
	health *health.Server
}

// NewServer builds a gRPC server exposing only grpc.health.v1.Health, reporting SERVING.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	srv := gogrpc.NewServer(gogrpc.UnaryInterceptor(loggingInterceptor(logger)))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Server{grpc: srv, health: hs}
}

func (s *Server) GRPC() *gogrpc.Server {
	return s.grpc
}

// Shutdown flips every service to NOT_SERVING and drains in-flight calls until ctx ends.
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

func loggingInterceptor(logger *slog.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
