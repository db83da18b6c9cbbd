package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	grpchealth "github.com/dtroode/authflow-server/internal/api/grpc/health"
	grpcrouter "github.com/dtroode/authflow-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/authflow-server/internal/api/grpc/server"
	httpctx "github.com/dtroode/authflow-server/internal/api/http/context"
	httprouter "github.com/dtroode/authflow-server/internal/api/http/router"
	httpserver "github.com/dtroode/authflow-server/internal/api/http/server"
	"github.com/dtroode/authflow-server/internal/config"
	"github.com/dtroode/authflow-server/internal/events"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/password"
	"github.com/dtroode/authflow-server/internal/ratelimit"
	"github.com/dtroode/authflow-server/internal/repository/postgres"
	"github.com/dtroode/authflow-server/internal/server"
	"github.com/dtroode/authflow-server/internal/service"
	storage "github.com/dtroode/authflow-server/internal/storage/minio"
	"github.com/dtroode/authflow-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting authflow server",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	txManager := postgres.NewTxManager(db)

	hasher, err := password.NewBcrypt(cfg.Password.BcryptCost)
	if err != nil {
		logger.Fatal("failed to create password hasher", "error", err)
	}
	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	storageClient, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	limiter := newRateLimiter(ctx, cfg.Redis, logger)

	publisher, closePublisher := newEventPublisher(cfg.AMQP, logger)
	defer closePublisher()

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, userRepo, txManager, logger)
	authService := service.NewAuth(userRepo, hasher, tokenService, txManager, publisher, logger)
	profileService := service.NewProfile(userRepo, hasher, tokenService, storageClient, txManager, publisher, logger, cfg.AvatarMaxBytes)
	adminService := service.NewAdmin(adminRepo, userRepo, logger)

	if cfg.LogLevel >= 0 {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := httprouter.New(httprouter.Services{
		Auth:     authService,
		Profile:  profileService,
		Admin:    adminService,
		Verifier: tokenService,
		Health:   db,
		Limiter:  limiter,
	}, httpctx.NewManager(), cfg.AvatarMaxBytes, logger).Register()
	if err != nil {
		logger.Fatal("failed to build HTTP router", "error", err)
	}

	healthService := grpchealth.New(db, logger)
	go healthService.Run(ctx, cfg.GRPC.ProbeInterval)

	servers := []model.Server{
		httpserver.NewHTTPServer(engine, ":"+cfg.HTTP.Port, cfg.HTTP.ReadTimeout),
		grpcserver.NewGRPCServer(grpcrouter.New(healthService, logger).Register(), ":"+cfg.GRPC.Port),
	}
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	healthService.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newRateLimiter returns nil when rate limiting is disabled, which the router
// treats as "no limit".
func newRateLimiter(ctx context.Context, cfg config.Redis, logger *logger.Logger) model.RateLimiter {
	if !cfg.Enabled {
		logger.Info("rate limiting disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis is unreachable, rate limiter will fail open until it recovers",
			"addr", cfg.Addr,
			"error", err.Error())
	}

	return ratelimit.NewTokenBucket(rdb, ratelimit.Options{
		Prefix:         cfg.Prefix,
		Capacity:       cfg.Capacity,
		RefillTokens:   cfg.RefillTokens,
		RefillInterval: cfg.RefillInterval,
	})
}

func newEventPublisher(cfg config.AMQP, logger *logger.Logger) (model.EventPublisher, func()) {
	if !cfg.Enabled {
		return events.NewLogPublisher(logger), func() {}
	}

	rmq, err := events.NewRabbitMQ(cfg.URL, cfg.Queue)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", "error", err)
	}

	return rmq, func() {
		if err := rmq.Close(); err != nil {
			logger.Warn("failed to close rabbitmq publisher", "error", err.Error())
		}
	}
}
