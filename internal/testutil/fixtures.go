package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/model"
)

// MakeUser returns a stored user with the given email and password hash.
func MakeUser(email, passwordHash string) model.User {
	now := time.Now().UTC()
	return model.User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          model.RoleUser,
		TermsAccepted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MakeAdmin returns a stored admin user.
func MakeAdmin(email string) model.User {
	u := MakeUser(email, "hash")
	u.Role = model.RoleAdmin
	return u
}

// PassthroughTx runs closures directly without a database. Calls is safe to
// read while other goroutines are inside WithinTx.
type PassthroughTx struct {
	Calls atomic.Int64
}

func (p *PassthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.Calls.Add(1)
	return fn(ctx)
}
