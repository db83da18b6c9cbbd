package service

import (
	"context"
	"sort"
	"time"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

const (
	activeSessionWindow = 10 * time.Minute
	activityPerSource   = 10
	activityLimit       = 20
	loginsWindow        = 6 * 24 * time.Hour
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Admin aggregates dashboard data.
type Admin struct {
	store  model.AdminStore
	users  model.UserStore
	logger *logger.Logger
	now    func() time.Time
}

func NewAdmin(store model.AdminStore, users model.UserStore, logger *logger.Logger) *Admin {
	return &Admin{
		store:  store,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (a *Admin) Stats(ctx context.Context) (model.DashboardStats, error) {
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		stats model.DashboardStats
		err   error
	)
	if stats.TotalUsers, err = a.store.CountUsers(ctx); err != nil {
		return model.DashboardStats{}, a.internal("failed to count users", err)
	}
	if stats.ActiveSessions, err = a.store.CountActiveSessions(ctx, now.Add(-activeSessionWindow)); err != nil {
		return model.DashboardStats{}, a.internal("failed to count active sessions", err)
	}
	if stats.NewRegistrationsToday, err = a.store.CountRegistrationsSince(ctx, today); err != nil {
		return model.DashboardStats{}, a.internal("failed to count registrations", err)
	}
	if stats.LoginAttemptsToday, err = a.store.CountLoginsSince(ctx, today); err != nil {
		return model.DashboardStats{}, a.internal("failed to count logins", err)
	}

	return stats, nil
}

// RecentActivity merges the latest registrations and logins, newest first.
func (a *Admin) RecentActivity(ctx context.Context) ([]model.ActivityItem, error) {
	regs, err := a.store.RecentRegistrations(ctx, activityPerSource)
	if err != nil {
		return nil, a.internal("failed to list recent registrations", err)
	}
	logins, err := a.store.RecentLogins(ctx, activityPerSource)
	if err != nil {
		return nil, a.internal("failed to list recent logins", err)
	}

	items := make([]model.ActivityItem, 0, len(regs)+len(logins))
	items = append(items, regs...)
	items = append(items, logins...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > activityLimit {
		items = items[:activityLimit]
	}

	return items, nil
}

// LoginsPerDay returns login counts of the last week labelled by weekday.
func (a *Admin) LoginsPerDay(ctx context.Context) ([]model.LoginsPerDay, error) {
	counts, err := a.store.LoginsPerWeekday(ctx, a.now().UTC().Add(-loginsWindow))
	if err != nil {
		return nil, a.internal("failed to count logins per day", err)
	}

	result := make([]model.LoginsPerDay, 0, len(counts))
	for _, c := range counts {
		if c.Weekday < 0 || c.Weekday >= len(weekdayLabels) {
			continue
		}
		result = append(result, model.LoginsPerDay{Date: weekdayLabels[c.Weekday], Logins: c.Logins})
	}
	return result, nil
}

// Users lists every user, newest first.
func (a *Admin) Users(ctx context.Context) ([]model.User, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return nil, a.internal("failed to list users", err)
	}
	return users, nil
}

func (a *Admin) internal(msg string, err error) error {
	a.logger.Error("Admin service: "+msg,
		"error", err.Error())
	return model.NewAuthError(model.KindInternal, msg, err)
}
