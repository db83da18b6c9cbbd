package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// AdminService defines the dashboard aggregates.
type AdminService interface {
	Stats(ctx context.Context) (model.DashboardStats, error)
	RecentActivity(ctx context.Context) ([]model.ActivityItem, error)
	LoginsPerDay(ctx context.Context) ([]model.LoginsPerDay, error)
	Users(ctx context.Context) ([]model.User, error)
}

// Admin handles the dashboard and analytics endpoints.
type Admin struct {
	adminService AdminService
	logger       *logger.Logger
}

func NewAdmin(adminService AdminService, logger *logger.Logger) *Admin {
	return &Admin{adminService: adminService, logger: logger}
}

func (h *Admin) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "stats failed", err)
		return
	}

	response.OK(c, http.StatusOK, statsResponse{
		TotalUsers:            stats.TotalUsers,
		ActiveSessions:        stats.ActiveSessions,
		NewRegistrationsToday: stats.NewRegistrationsToday,
		LoginAttemptsToday:    stats.LoginAttemptsToday,
	}, "Dashboard stats retrieved")
}

func (h *Admin) Activity(c *gin.Context) {
	items, err := h.adminService.RecentActivity(c.Request.Context())
	if err != nil {
		h.fail(c, "activity failed", err)
		return
	}

	out := make([]activityResponse, 0, len(items))
	for _, it := range items {
		out = append(out, activityResponse{
			ID:        it.ID.String(),
			Action:    it.Action,
			UserEmail: it.UserEmail,
			Timestamp: it.Timestamp,
			Status:    it.Status,
		})
	}

	response.OK(c, http.StatusOK, out, "Recent activity retrieved")
}

func (h *Admin) Users(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context())
	if err != nil {
		h.fail(c, "user listing failed", err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}

	response.OK(c, http.StatusOK, out, "User list retrieved")
}

func (h *Admin) LoginsPerDay(c *gin.Context) {
	days, err := h.adminService.LoginsPerDay(c.Request.Context())
	if err != nil {
		h.fail(c, "logins per day failed", err)
		return
	}

	out := make([]loginsPerDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, loginsPerDayResponse{Date: d.Date, Logins: d.Logins})
	}

	response.OK(c, http.StatusOK, out, "Logins per day retrieved")
}

func (h *Admin) fail(c *gin.Context, msg string, err error) {
	logFailure(h.logger, "Admin handler: "+msg, c, err)
	response.FromError(c, err)
}
