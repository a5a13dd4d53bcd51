package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/memory"
)

type countingStatsRepository struct {
	battlestats.Repository
	gets int
	err  error
}

func (r *countingStatsRepository) Get(ctx context.Context, userID string) (battlestats.Stats, bool, error) {
	r.gets++
	if r.err != nil {
		return battlestats.Stats{}, false, r.err
	}
	return r.Repository.Get(ctx, userID)
}

func TestBattleStatsRepository_CachesUntilWrite(t *testing.T) {
	ctx := t.Context()
	inner := &countingStatsRepository{Repository: memory.NewBattleStatsRepository()}
	repo := NewBattleStatsRepository(inner, time.Minute)

	if _, exists, err := repo.Get(ctx, "alice"); err != nil || exists {
		t.Fatalf("expected missing stats, exists=%v err=%v", exists, err)
	}
	if _, _, err := repo.Get(ctx, "alice"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if inner.gets != 1 {
		t.Fatalf("expected cached miss to avoid a reload, got %d loads", inner.gets)
	}

	if _, err := repo.RecordOutcome(ctx, "alice", battlestats.OutcomeWin); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	stats, exists, err := repo.Get(ctx, "alice")
	if err != nil || !exists {
		t.Fatalf("expected stats after write, exists=%v err=%v", exists, err)
	}
	if stats.Wins != 1 || stats.CurrentStreak != 1 {
		t.Fatalf("stale stats after write: %+v", stats)
	}
	if inner.gets != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", inner.gets)
	}

	if err := repo.IncrementCorrectVotes(ctx, []string{"alice", "bob"}); err != nil {
		t.Fatalf("increment correct votes: %v", err)
	}
	stats, _, _ = repo.Get(ctx, "alice")
	if stats.CorrectVotes != 1 {
		t.Fatalf("expected correct vote to be visible, got %+v", stats)
	}
}

func TestBattleStatsRepository_DoesNotCacheErrors(t *testing.T) {
	ctx := t.Context()
	inner := &countingStatsRepository{Repository: memory.NewBattleStatsRepository(), err: errors.New("db down")}
	repo := NewBattleStatsRepository(inner, time.Minute)

	if _, _, err := repo.Get(ctx, "alice"); err == nil {
		t.Fatalf("expected load error")
	}
	inner.err = nil
	if _, _, err := repo.Get(ctx, "alice"); err != nil {
		t.Fatalf("expected recovery after error, got %v", err)
	}
	if inner.gets != 2 {
		t.Fatalf("expected 2 loads, got %d", inner.gets)
	}
}

func TestScoreRepository_AchievementListInvalidatedOnUnlock(t *testing.T) {
	ctx := t.Context()
	repo := NewScoreRepository(memory.NewScoreRepository(), time.Minute)

	items, err := repo.ListAchievements(ctx, "alice")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected no achievements, got %v err=%v", items, err)
	}

	created, err := repo.UnlockAchievement(ctx, progress.Achievement{UserID: "alice", Code: "rising_star", Level: 5})
	if err != nil || !created {
		t.Fatalf("expected unlock, created=%v err=%v", created, err)
	}
	items, err = repo.ListAchievements(ctx, "alice")
	if err != nil || len(items) != 1 || items[0].Code != "rising_star" {
		t.Fatalf("expected fresh achievement list, got %v err=%v", items, err)
	}
}
