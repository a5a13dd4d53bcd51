package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	basecache "github.com/riskibarqy/battle-arena/internal/platform/cache"
)

type cachedStats struct {
	value  battlestats.Stats
	exists bool
}

// BattleStatsRepository caches profile reads; every write drops the user's key.
type BattleStatsRepository struct {
	next  battlestats.Repository
	cache *basecache.Store[cachedStats]
}

func NewBattleStatsRepository(next battlestats.Repository, ttl time.Duration) *BattleStatsRepository {
	return &BattleStatsRepository{next: next, cache: basecache.NewStore[cachedStats](ttl)}
}

func (r *BattleStatsRepository) Get(ctx context.Context, userID string) (battlestats.Stats, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, statsKey(userID), func(ctx context.Context) (cachedStats, error) {
		item, exists, err := r.next.Get(ctx, userID)
		if err != nil {
			return cachedStats{}, err
		}
		return cachedStats{value: item, exists: exists}, nil
	})
	if err != nil {
		return battlestats.Stats{}, false, err
	}

	return cached.value, cached.exists, nil
}

func (r *BattleStatsRepository) RecordOutcome(ctx context.Context, userID string, outcome battlestats.Outcome) (battlestats.StreakResult, error) {
	defer r.cache.Delete(ctx, statsKey(userID))
	return r.next.RecordOutcome(ctx, userID, outcome)
}

func (r *BattleStatsRepository) IncrementVotesCast(ctx context.Context, userID string) error {
	defer r.cache.Delete(ctx, statsKey(userID))
	return r.next.IncrementVotesCast(ctx, userID)
}

func (r *BattleStatsRepository) IncrementCorrectVotes(ctx context.Context, userIDs []string) error {
	defer func() {
		keys := make([]string, 0, len(userIDs))
		for _, userID := range userIDs {
			keys = append(keys, statsKey(userID))
		}
		r.cache.Delete(ctx, keys...)
	}()
	return r.next.IncrementCorrectVotes(ctx, userIDs)
}

func statsKey(userID string) string {
	return "battle-stats:" + userID
}

type cachedAchievements struct {
	items []progress.Achievement
}

// ScoreRepository caches the achievement list only. Score records change on
// every scored action, so they always read through.
type ScoreRepository struct {
	next  progress.Repository
	cache *basecache.Store[cachedAchievements]
}

func NewScoreRepository(next progress.Repository, ttl time.Duration) *ScoreRepository {
	return &ScoreRepository{next: next, cache: basecache.NewStore[cachedAchievements](ttl)}
}

func (r *ScoreRepository) Get(ctx context.Context, userID string) (progress.ScoreRecord, bool, error) {
	return r.next.Get(ctx, userID)
}

func (r *ScoreRepository) AddPoints(ctx context.Context, userID string, delta int64, now time.Time) (progress.ScoreRecord, error) {
	return r.next.AddPoints(ctx, userID, delta, now)
}

func (r *ScoreRepository) RaiseLevel(ctx context.Context, userID string, level int, now time.Time) (int, bool, error) {
	return r.next.RaiseLevel(ctx, userID, level, now)
}

func (r *ScoreRepository) UnlockAchievement(ctx context.Context, achievement progress.Achievement) (bool, error) {
	created, err := r.next.UnlockAchievement(ctx, achievement)
	if created {
		r.cache.Delete(ctx, achievementsKey(achievement.UserID))
	}
	return created, err
}

func (r *ScoreRepository) ListAchievements(ctx context.Context, userID string) ([]progress.Achievement, error) {
	cached, err := r.cache.GetOrLoad(ctx, achievementsKey(userID), func(ctx context.Context) (cachedAchievements, error) {
		items, err := r.next.ListAchievements(ctx, userID)
		if err != nil {
			return cachedAchievements{}, err
		}
		return cachedAchievements{items: append([]progress.Achievement(nil), items...)}, nil
	})
	if err != nil {
		return nil, err
	}

	return append([]progress.Achievement(nil), cached.items...), nil
}

func achievementsKey(userID string) string {
	return "achievements:" + userID
}
