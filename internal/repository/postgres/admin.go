package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/authflow-server/internal/model"
)

var _ model.AdminStore = (*AdminRepository)(nil)

// AdminRepository runs read only aggregate queries for the dashboard.
type AdminRepository struct {
	db DBTX
}

func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AdminRepository) CountUsers(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CountActiveSessions counts distinct users with a refresh token created since the given time.
func (r *AdminRepository) CountActiveSessions(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(DISTINCT user_id) FROM refresh_tokens WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) CountRegistrationsSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) CountLoginsSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count logins: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) RecentRegistrations(ctx context.Context, limit int) ([]model.ActivityItem, error) {
	const query = `
        SELECT id, email, created_at FROM users
        ORDER BY created_at DESC LIMIT $1
    `
	items, err := r.activity(ctx, query, "User registration", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent registrations: %w", err)
	}
	return items, nil
}

func (r *AdminRepository) RecentLogins(ctx context.Context, limit int) ([]model.ActivityItem, error) {
	const query = `
        SELECT rt.id, u.email, rt.created_at
        FROM refresh_tokens rt JOIN users u ON u.id = rt.user_id
        ORDER BY rt.created_at DESC LIMIT $1
    `
	items, err := r.activity(ctx, query, "User login", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent logins: %w", err)
	}
	return items, nil
}

func (r *AdminRepository) activity(ctx context.Context, query, action string, limit int) ([]model.ActivityItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ActivityItem, 0, limit)
	for rows.Next() {
		item := model.ActivityItem{Action: action, Status: "success"}
		if err := rows.Scan(&item.ID, &item.UserEmail, &item.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LoginsPerWeekday groups refresh tokens created since the given time by UTC
// day of week, regardless of the session time zone.
func (r *AdminRepository) LoginsPerWeekday(ctx context.Context, since time.Time) ([]model.WeekdayCount, error) {
	const query = `
        SELECT EXTRACT(DOW FROM created_at AT TIME ZONE 'UTC')::int AS dow, COUNT(*)
        FROM refresh_tokens WHERE created_at >= $1
        GROUP BY dow ORDER BY dow
    `
	rows, err := conn(ctx, r.db).Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count logins per weekday: %w", err)
	}
	defer rows.Close()

	counts := make([]model.WeekdayCount, 0, 7)
	for rows.Next() {
		var c model.WeekdayCount
		if err := rows.Scan(&c.Weekday, &c.Logins); err != nil {
			return nil, fmt.Errorf("failed to scan weekday count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekday counts: %w", err)
	}
	return counts, nil
}
