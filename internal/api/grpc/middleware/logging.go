package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/authflow-server/internal/logger"
)

// healthServicePrefix matches every method of grpc.health.v1.Health.
const healthServicePrefix = "/grpc.health.v1.Health/"

// Logging logs finished gRPC calls and recovers from handler panics.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Logger adapts the application logger to the interceptor logger interface.
func (l *Logging) Logger() logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.logger.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// UnaryInterceptor logs unary calls except health probes, which orchestrators
// send every few seconds.
func (l *Logging) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return selector.UnaryServerInterceptor(
		logging.UnaryServerInterceptor(l.Logger(), logging.WithLogOnEvents(logging.FinishCall)),
		selector.MatchFunc(notHealthProbe),
	)
}

// StreamInterceptor is UnaryInterceptor for streaming calls such as Health/Watch.
func (l *Logging) StreamInterceptor() grpc.StreamServerInterceptor {
	return selector.StreamServerInterceptor(
		logging.StreamServerInterceptor(l.Logger(), logging.WithLogOnEvents(logging.FinishCall)),
		selector.MatchFunc(notHealthProbe),
	)
}

// Recover is a recovery handler that logs the panic and hides it from clients.
func (l *Logging) Recover(ctx context.Context, p any) error {
	l.logger.ErrorContext(ctx, "gRPC handler panicked",
		"panic", p)
	return status.Error(codes.Internal, "internal server error")
}

func notHealthProbe(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), healthServicePrefix)
}
