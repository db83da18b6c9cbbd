package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 10 * time.Minute
	// RefreshTokenTTL is the lifetime of a refresh token and of its stored record.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenManager signs and verifies access and refresh tokens.
type TokenManager interface {
	GenerateAccessToken(user User) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
}

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the result of issuing or rotating tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64
}
