package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/progress"
)

type ScoreRepository struct {
	mu           sync.RWMutex
	records      map[string]progress.ScoreRecord
	achievements map[string]progress.Achievement
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{
		records:      make(map[string]progress.ScoreRecord),
		achievements: make(map[string]progress.Achievement),
	}
}

func (r *ScoreRepository) Get(_ context.Context, userID string) (progress.ScoreRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.records[userID]
	return item, ok, nil
}

func (r *ScoreRepository) AddPoints(_ context.Context, userID string, delta int64, now time.Time) (progress.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.records[userID]
	if !ok {
		item = progress.ScoreRecord{UserID: userID, Level: 1}
	}
	item.CumulativePoints += delta
	item.DailyPoints += delta
	item.MonthlyPoints += delta
	item.UpdatedAt = now
	r.records[userID] = item
	return item, nil
}

func (r *ScoreRepository) RaiseLevel(_ context.Context, userID string, level int, now time.Time) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.records[userID]
	if !ok {
		item = progress.ScoreRecord{UserID: userID, Level: 1}
	}
	previous := item.Level
	if level <= previous {
		return previous, false, nil
	}

	item.Level = level
	item.UpdatedAt = now
	r.records[userID] = item
	return previous, true, nil
}

func (r *ScoreRepository) UnlockAchievement(_ context.Context, achievement progress.Achievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := achievement.UserID + "::" + achievement.Code
	if _, exists := r.achievements[key]; exists {
		return false, nil
	}
	r.achievements[key] = achievement
	return true, nil
}

func (r *ScoreRepository) ListAchievements(_ context.Context, userID string) ([]progress.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]progress.Achievement, 0)
	for _, a := range r.achievements {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Level < out[j].Level
	})
	return out, nil
}
