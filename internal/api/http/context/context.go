// Package context carries the authenticated caller through request contexts.
package context

import (
	"context"

	"github.com/dtroode/authflow-server/internal/model"
)

type identityKey struct{}

// Manager stores the verified caller identity in a request context.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentity returns a copy of ctx carrying identity.
func (m *Manager) SetIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity returns the identity set by SetIdentity. The boolean is false
// when the request was not authenticated.
func (m *Manager) GetIdentity(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok {
		return model.Identity{}, false
	}
	return identity, true
}
