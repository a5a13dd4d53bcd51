package event

import (
	"context"
	"time"
)

type Kind string

const (
	KindChallengeIssued     Kind = "challenge_issued"
	KindBattleFinished      Kind = "battle_finished"
	KindLevelUp             Kind = "level_up"
	KindAchievementUnlocked Kind = "achievement_unlocked"
)

// Event is a notification addressed to one user.
type Event struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	UserID     string         `json:"user_id"`
	BattleID   string         `json:"battle_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher delivers events. Implementations may fail; callers of the
// notifier never see those failures.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Notifier is the fire-and-forget facade used by use cases.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}
