package eventbus

import (
	"context"

	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

// LogPublisher records every event in the structured log. It is always wired.
type LogPublisher struct {
	logger *logging.Logger
}

func NewLogPublisher(logger *logging.Logger) *LogPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogPublisher{logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, evt event.Event) error {
	p.logger.InfoContext(ctx, "event published",
		"event_id", evt.ID,
		"kind", string(evt.Kind),
		"user_id", evt.UserID,
		"battle_id", evt.BattleID,
		"payload", evt.Payload,
	)
	return nil
}
