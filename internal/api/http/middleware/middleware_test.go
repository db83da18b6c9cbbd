package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/authflow-server/internal/api/http/context"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/mocks"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(e *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_RequireAuth(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name        string
		header      string
		verifyErr   error
		expectCall  bool
		wantStatus  int
		wantMessage string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: "missing authorization token"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantMessage: "missing authorization token"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantMessage: "missing authorization token"},
		{name: "invalid token", header: "Bearer bad", verifyErr: model.ErrInvalidToken, expectCall: true, wantStatus: http.StatusUnauthorized, wantMessage: "invalid or expired token"},
		{name: "valid token", header: "Bearer good", expectCall: true, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", expectCall: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := newMockTokenVerifier(t)
			if tt.expectCall {
				verifier.On("VerifyAccess", mock.Anything, mock.Anything).
					Return(model.AccessClaims{UserID: userID, Email: "a@example.com", Role: model.RoleUser}, tt.verifyErr)
			}

			cm := httpctx.NewManager()
			auth := NewAuthenticate(verifier, cm, testutil.MakeNoopLogger())

			e := gin.New()
			e.GET("/", auth.RequireAuth(), func(c *gin.Context) {
				identity, ok := cm.GetIdentity(c.Request.Context())
				require.True(t, ok)
				assert.Equal(t, userID, identity.UserID)
				assert.Equal(t, model.RoleUser, identity.Role)
				c.Status(http.StatusOK)
			})

			w := serve(e, http.MethodGet, "/", map[string]string{"Authorization": tt.header})

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMessage != "" {
				assert.Contains(t, w.Body.String(), tt.wantMessage)
			}
		})
	}
}

func TestAuthenticate_RequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identity   *model.Identity
		wantStatus int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"user", &model.Identity{UserID: uuid.New(), Role: model.RoleUser}, http.StatusForbidden},
		{"admin", &model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := httpctx.NewManager()
			auth := NewAuthenticate(newMockTokenVerifier(t), cm, testutil.MakeNoopLogger())

			e := gin.New()
			e.Use(func(c *gin.Context) {
				if tt.identity != nil {
					c.Request = c.Request.WithContext(cm.SetIdentity(c.Request.Context(), *tt.identity))
				}
				c.Next()
			})
			e.GET("/", auth.RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := serve(e, http.MethodGet, "/", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	newEngine := func(limiter model.RateLimiter) *gin.Engine {
		e := gin.New()
		rl := NewRateLimit(limiter, testutil.MakeNoopLogger())
		e.POST("/login", rl.Limit("login"), func(c *gin.Context) { c.Status(http.StatusOK) })
		return e
	}

	t.Run("allowed", func(t *testing.T) {
		limiter := mocks.NewRateLimiter(t)
		limiter.On("Allow", mock.Anything, "login:192.0.2.1").
			Return(model.RateDecision{Allowed: true, Limit: 5, Remaining: 4}, nil)

		w := serve(newEngine(limiter), http.MethodPost, "/login", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("blocked", func(t *testing.T) {
		limiter := mocks.NewRateLimiter(t)
		limiter.On("Allow", mock.Anything, mock.Anything).
			Return(model.RateDecision{Allowed: false, Limit: 5, RetryAfter: 1500 * time.Millisecond}, nil)

		w := serve(newEngine(limiter), http.MethodPost, "/login", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		limiter := mocks.NewRateLimiter(t)
		limiter.On("Allow", mock.Anything, mock.Anything).Return(model.RateDecision{}, assert.AnError)

		w := serve(newEngine(limiter), http.MethodPost, "/login", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		w := serve(newEngine(nil), http.MethodPost, "/login", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogging(logger.NewWithWriter(&buf, 0, "text"))

	e := gin.New()
	e.Use(l.Recovery(), l.Handle())
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(e, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "HTTP request completed")
	assert.Contains(t, buf.String(), "path=/ok")

	w = serve(e, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "HTTP handler panicked")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestAuthenticate_PassesClaimsToContextManager(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	verifier := newMockTokenVerifier(t)
	verifier.On("VerifyAccess", mock.Anything, "good").
		Return(model.AccessClaims{UserID: userID, Email: "a@example.com", Role: model.RoleAdmin}, nil)

	want := model.Identity{UserID: userID, Email: "a@example.com", Role: model.RoleAdmin}
	cm := mocks.NewContextManager(t)
	cm.On("SetIdentity", mock.Anything, want).
		Return(func(ctx context.Context, _ model.Identity) context.Context { return ctx })
	cm.On("GetIdentity", mock.Anything).Return(model.Identity{}, false)

	auth := NewAuthenticate(verifier, cm, testutil.MakeNoopLogger())
	e := gin.New()
	e.GET("/", auth.RequireAuth(), auth.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(e, http.MethodGet, "/", map[string]string{"Authorization": "Bearer good"})

	// The stub never stores the identity, so the role gate sees an anonymous caller.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
