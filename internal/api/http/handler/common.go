package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// callerIdentity reads the identity set by the authentication middleware.
// Handlers behind the auth gate always have one; a missing identity is
// answered with 401.
func callerIdentity(c *gin.Context, cm model.ContextManager) (model.Identity, bool) {
	identity, ok := cm.GetIdentity(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing authorization token")
		return model.Identity{}, false
	}
	return identity, true
}

// logFailure logs internal errors with their cause and client errors at
// debug level.
func logFailure(l *logger.Logger, msg string, c *gin.Context, err error) {
	if model.KindOf(err) == model.KindInternal {
		l.ErrorContext(c.Request.Context(), msg,
			"path", c.FullPath(),
			"error", err.Error())
		return
	}
	l.DebugContext(c.Request.Context(), msg,
		"path", c.FullPath(),
		"kind", model.KindOf(err).String())
}
