package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/authflow-server/internal/api/http/context"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenRoles accepts the tokens "user" and "admin" and rejects anything else.
type tokenRoles struct{}

func (tokenRoles) VerifyAccess(_ context.Context, token string) (model.AccessClaims, error) {
	switch token {
	case "user":
		return model.AccessClaims{UserID: uuid.New(), Role: model.RoleUser}, nil
	case "admin":
		return model.AccessClaims{UserID: uuid.New(), Role: model.RoleAdmin}, nil
	default:
		return model.AccessClaims{}, model.ErrInvalidToken
	}
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type emptyAdmin struct{}

func (emptyAdmin) Stats(context.Context) (model.DashboardStats, error) {
	return model.DashboardStats{TotalUsers: 1}, nil
}
func (emptyAdmin) RecentActivity(context.Context) ([]model.ActivityItem, error) { return nil, nil }
func (emptyAdmin) LoginsPerDay(context.Context) ([]model.LoginsPerDay, error) { return nil, nil }
func (emptyAdmin) Users(context.Context) ([]model.User, error) { return nil, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	r := New(Services{
		Admin:    emptyAdmin{},
		Verifier: tokenRoles{},
		Health:   okPinger{},
	}, httpctx.NewManager(), 5<<20, testutil.MakeNoopLogger())

	e, err := r.Register()
	require.NoError(t, err)
	return e
}

func TestRouter_RouteTable(t *testing.T) {
	t.Parallel()

	r := New(Services{Verifier: tokenRoles{}, Health: okPinger{}}, httpctx.NewManager(), 0, testutil.MakeNoopLogger())
	e, err := r.Register()
	require.NoError(t, err)

	got := make(map[string]bool)
	for _, ri := range e.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/auth/me",
		"GET /api/users/profile",
		"PUT /api/users/profile",
		"PUT /api/users/password",
		"DELETE /api/users/account",
		"POST /api/users/avatar",
		"GET /uploads/avatars/:name",
		"GET /api/admin/dashboard/stats",
		"GET /api/admin/dashboard/activity",
		"GET /api/admin/users",
		"GET /api/analytics/logins-per-day",
		"GET /api/health",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestRouter_Gates(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"profile needs auth", http.MethodGet, "/api/users/profile", "", http.StatusUnauthorized},
		{"logout needs auth", http.MethodPost, "/api/auth/logout", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/auth/me", "forged", http.StatusUnauthorized},
		{"admin needs auth", http.MethodGet, "/api/admin/dashboard/stats", "", http.StatusUnauthorized},
		{"admin rejects user role", http.MethodGet, "/api/admin/dashboard/stats", "user", http.StatusForbidden},
		{"analytics rejects user role", http.MethodGet, "/api/analytics/logins-per-day", "user", http.StatusForbidden},
		{"admin allows admin role", http.MethodGet, "/api/admin/dashboard/stats", "admin", http.StatusOK},
		{"admin users", http.MethodGet, "/api/admin/users", "admin", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
