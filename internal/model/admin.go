package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdminStore provides read only aggregates for the admin dashboard.
type AdminStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountActiveSessions(ctx context.Context, since time.Time) (int64, error)
	CountRegistrationsSince(ctx context.Context, since time.Time) (int64, error)
	CountLoginsSince(ctx context.Context, since time.Time) (int64, error)
	RecentRegistrations(ctx context.Context, limit int) ([]ActivityItem, error)
	RecentLogins(ctx context.Context, limit int) ([]ActivityItem, error)
	LoginsPerWeekday(ctx context.Context, since time.Time) ([]WeekdayCount, error)
}

// DashboardStats are the headline numbers of the admin dashboard.
type DashboardStats struct {
	TotalUsers            int64
	ActiveSessions        int64
	NewRegistrationsToday int64
	LoginAttemptsToday    int64
}

// ActivityItem is a single entry of the recent activity feed.
type ActivityItem struct {
	ID        uuid.UUID
	Action    string
	UserEmail string
	Timestamp time.Time
	Status    string
}

// WeekdayCount is a login count for a weekday, 0 being Sunday.
type WeekdayCount struct {
	Weekday int
	Logins  int64
}

// LoginsPerDay is a login count labelled with a short weekday name.
type LoginsPerDay struct {
	Date   string
	Logins int64
}
