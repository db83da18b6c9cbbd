package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists refresh token hash records. The raw token is never stored.
type SessionStore interface {
	Insert(ctx context.Context, record RefreshTokenRecord) error
	FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (RefreshTokenRecord, error)
	// DeleteByHash returns the number of deleted records so callers can
	// detect a concurrent rotation that already consumed the token.
	DeleteByHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RefreshTokenRecord is the persisted trace of an issued refresh token.
type RefreshTokenRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
