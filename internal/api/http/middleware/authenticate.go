package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, token string) (model.AccessClaims, error)
}

// Authenticate validates bearer tokens and injects the caller identity into
// the request context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// RequireAuth rejects requests without a valid access token.
func (m *Authenticate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.logger.Debug("Authenticate: missing bearer token",
				"path", c.Request.URL.Path)
			response.Error(c, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := m.verifier.VerifyAccess(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Debug("Authenticate: token rejected",
				"path", c.Request.URL.Path,
				"error", err.Error())
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := m.contextManager.SetIdentity(c.Request.Context(), model.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole admits only callers whose verified role is role. It must run
// after RequireAuth.
func (m *Authenticate) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.contextManager.GetIdentity(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing authorization token")
			return
		}
		if identity.Role != role {
			m.logger.Info("Authenticate: role check failed",
				"user_id", identity.UserID,
				"role", string(identity.Role),
				"required", string(role))
			response.Error(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
