package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/authflow-server/internal/api/grpc/health"
	"github.com/dtroode/authflow-server/internal/api/grpc/middleware"
	"github.com/dtroode/authflow-server/internal/logger"
)

// Router builds the operational gRPC server. It carries no business RPCs;
// orchestrators use it for health probes and operators for reflection.
type Router struct {
	health *health.Service
	logger *logger.Logger
}

// New creates new gRPC Router instance.
func New(health *health.Service, logger *logger.Logger) *Router {
	return &Router{
		health: health,
		logger: logger,
	}
}

// Register creates the gRPC server with recovery and logging interceptors
// and registers the health and reflection services on it.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoverOpt := recovery.WithRecoveryHandlerContext(logging.Recover)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoverOpt),
			logging.UnaryInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoverOpt),
			logging.StreamInterceptor(),
		),
	)

	r.health.Register(s)
	reflection.Register(s)

	return s
}
