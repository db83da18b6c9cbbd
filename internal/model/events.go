package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an auth lifecycle event.
type EventType string

const (
	EventUserRegistered      EventType = "user.registered"
	EventUserLoggedIn        EventType = "user.logged_in"
	EventUserLoggedOut       EventType = "user.logged_out"
	EventUserPasswordChanged EventType = "user.password_changed"
	EventUserDeleted         EventType = "user.deleted"
)

// AuthEvent is published after a successful lifecycle transition.
type AuthEvent struct {
	Type       EventType `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers auth events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event AuthEvent) error
}
