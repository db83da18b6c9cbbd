package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/service"
)

// AuthService defines the credential and session operations.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (service.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// Auth handles the /auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account and returns its first session.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}

	session, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		TermsAccepted: req.AgreeToTerms,
	})
	if err != nil {
		h.fail(c, "registration failed", err)
		return
	}

	response.OK(c, http.StatusCreated, newAuthResponse(session), "User registered successfully")
}

// Login verifies credentials and returns a new session.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login failed", err)
		return
	}

	response.OK(c, http.StatusOK, newAuthResponse(session), "Login successful")
}

// Refresh rotates a refresh token.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, "token refresh failed", err)
		return
	}

	response.OK(c, http.StatusOK, newAuthResponse(session), "Token refreshed successfully")
}

// Logout revokes every refresh token of the caller.
func (h *Auth) Logout(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), identity.UserID); err != nil {
		h.fail(c, "logout failed", err)
		return
	}

	response.OK(c, http.StatusOK, "Logged out", "Logout successful")
}

// Me returns the caller.
func (h *Auth) Me(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, "current user lookup failed", err)
		return
	}

	response.OK(c, http.StatusOK, newUserResponse(user), "Current user retrieved")
}

func (h *Auth) identity(c *gin.Context) (model.Identity, bool) {
	return callerIdentity(c, h.contextManager)
}

func (h *Auth) fail(c *gin.Context, msg string, err error) {
	logFailure(h.logger, "Auth handler: "+msg, c, err)
	response.FromError(c, err)
}
