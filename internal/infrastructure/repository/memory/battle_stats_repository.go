package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
)

type BattleStatsRepository struct {
	mu    sync.RWMutex
	items map[string]battlestats.Stats
	now   func() time.Time
}

func NewBattleStatsRepository() *BattleStatsRepository {
	return &BattleStatsRepository{
		items: make(map[string]battlestats.Stats),
		now:   time.Now,
	}
}

func (r *BattleStatsRepository) Get(_ context.Context, userID string) (battlestats.Stats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	return item, ok, nil
}

func (r *BattleStatsRepository) RecordOutcome(_ context.Context, userID string, outcome battlestats.Outcome) (battlestats.StreakResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.items[userID]
	current.UserID = userID
	next, milestone, err := battlestats.ApplyOutcome(current, outcome)
	if err != nil {
		return battlestats.StreakResult{}, err
	}
	next.UpdatedAt = r.now().UTC()
	r.items[userID] = next

	return battlestats.StreakResult{
		CurrentStreak: next.CurrentStreak,
		BestStreak:    next.BestStreak,
		Milestone:     milestone,
	}, nil
}

func (r *BattleStatsRepository) IncrementVotesCast(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.items[userID]
	current.UserID = userID
	current.TotalVotesCast++
	current.UpdatedAt = r.now().UTC()
	r.items[userID] = current
	return nil
}

func (r *BattleStatsRepository) IncrementCorrectVotes(_ context.Context, userIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for _, userID := range userIDs {
		current := r.items[userID]
		current.UserID = userID
		current.CorrectVotes++
		current.UpdatedAt = now
		r.items[userID] = current
	}
	return nil
}
