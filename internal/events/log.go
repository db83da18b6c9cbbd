package events

import (
	"context"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

var _ model.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the application log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(logger *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event model.AuthEvent) error {
	p.logger.InfoContext(ctx, "auth event",
		"type", string(event.Type),
		"user_id", event.UserID,
		"occurred_at", event.OccurredAt)
	return nil
}
