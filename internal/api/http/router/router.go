package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/api/http/handler"
	"github.com/dtroode/authflow-server/internal/api/http/middleware"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// Services bundles what the HTTP API is built from.
type Services struct {
	Auth     handler.AuthService
	Profile  handler.ProfileService
	Admin    handler.AdminService
	Verifier middleware.TokenVerifier
	Health   handler.Pinger
	// Limiter may be nil, which disables rate limiting.
	Limiter model.RateLimiter
}

// Router builds the gin engine for the auth API.
type Router struct {
	services       Services
	contextManager model.ContextManager
	logger         *logger.Logger
	maxUploadBytes int64
}

// New creates new HTTP Router instance.
func New(services Services, contextManager model.ContextManager, maxUploadBytes int64, logger *logger.Logger) *Router {
	return &Router{
		services:       services,
		contextManager: contextManager,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register wires middleware and routes and returns the engine.
func (r *Router) Register() (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Verifier, r.contextManager, r.logger)
	rateLimit := middleware.NewRateLimit(r.services.Limiter, r.logger)

	authHandler := handler.NewAuth(r.services.Auth, r.contextManager, r.logger)
	userHandler := handler.NewUser(r.services.Profile, r.contextManager, r.maxUploadBytes, r.logger)
	adminHandler := handler.NewAdmin(r.services.Admin, r.logger)
	healthHandler := handler.NewHealth(r.services.Health)

	e := gin.New()
	e.Use(logging.Recovery(), logging.Handle())
	if r.maxUploadBytes > 0 {
		// Only bounds in-memory buffering; larger parts spill to temp files.
		// The body itself is capped by the avatar handler.
		e.MaxMultipartMemory = r.maxUploadBytes + 1<<20
	}

	e.GET("/uploads/avatars/:name", userHandler.DownloadAvatar)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Check)

	auth := api.Group("/auth")
	auth.POST("/register", rateLimit.Limit("register"), authHandler.Register)
	auth.POST("/login", rateLimit.Limit("login"), authHandler.Login)
	auth.POST("/refresh", rateLimit.Limit("refresh"), authHandler.Refresh)
	auth.POST("/logout", authenticate.RequireAuth(), authHandler.Logout)
	auth.GET("/me", authenticate.RequireAuth(), authHandler.Me)

	users := api.Group("/users", authenticate.RequireAuth())
	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.PUT("/password", userHandler.ChangePassword)
	users.DELETE("/account", userHandler.DeleteAccount)
	users.POST("/avatar", userHandler.UploadAvatar)

	admin := api.Group("", authenticate.RequireAuth(), authenticate.RequireRole(model.RoleAdmin))
	admin.GET("/admin/dashboard/stats", adminHandler.Stats)
	admin.GET("/admin/dashboard/activity", adminHandler.Activity)
	admin.GET("/admin/users", adminHandler.Users)
	admin.GET("/analytics/logins-per-day", adminHandler.LoginsPerDay)

	return e, nil
}
