package service

import (
	"context"
	"time"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// publishEvent delivers an event and only logs failures.
func publishEvent(ctx context.Context, publisher model.EventPublisher, log *logger.Logger, eventType model.EventType, user model.User) {
	if publisher == nil {
		return
	}

	event := model.AuthEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("failed to publish auth event",
			"type", string(eventType),
			"user_id", user.ID,
			"error", err.Error())
	}
}
