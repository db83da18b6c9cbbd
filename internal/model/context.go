package model

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the caller identity extracted from a verified access token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type ContextManager interface {
	SetIdentity(ctx context.Context, identity Identity) context.Context
	GetIdentity(ctx context.Context) (Identity, bool)
}
