package progress

import (
	"context"
	"time"
)

// Repository describes score persistence. All writes are additive or
// compare-and-set so concurrent scorers never lose updates.
type Repository interface {
	Get(ctx context.Context, userID string) (ScoreRecord, bool, error)
	// AddPoints adds delta to cumulative, daily and monthly points and returns the updated record.
	AddPoints(ctx context.Context, userID string, delta int64, now time.Time) (ScoreRecord, error)
	// RaiseLevel sets level only when it is higher than the stored one.
	// It returns the level stored before the call and whether it changed.
	RaiseLevel(ctx context.Context, userID string, level int, now time.Time) (int, bool, error)
	// UnlockAchievement reports false when the achievement already existed.
	UnlockAchievement(ctx context.Context, achievement Achievement) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]Achievement, error)
}
