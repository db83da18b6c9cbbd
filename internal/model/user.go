package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a user.
type Role string

const (
	// RoleUser is the default role assigned on registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to the dashboard and analytics endpoints.
	RoleAdmin Role = "admin"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, at time.Time) (User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string, at time.Time) (User, error)
	ExistsByEmailExcept(ctx context.Context, email string, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]User, error)
}

// User represents a stored user with its credential material.
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Name          *string
	AvatarURL     *string
	Role          Role
	EmailVerified bool
	TermsAccepted bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLogin     *time.Time
}

// Profile is the public subset of User returned by profile endpoints.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	AvatarURL *string
	Role      Role
	CreatedAt time.Time
	LastLogin *time.Time
}

// Profile projects the user to its public profile.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
