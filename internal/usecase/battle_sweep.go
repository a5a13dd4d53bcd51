package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/sourcegraph/conc/pool"
)

// ExpireStaleBattles cancels waiting battles past matchmaking and finishes
// active battles past voting. It returns only the ids this call transitioned.
func (s *BattleService) ExpireStaleBattles(ctx context.Context, now time.Time) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.ExpireStaleBattles")
	defer span.End()

	if now.IsZero() {
		now = s.now()
	}
	now = now.UTC()

	due, err := s.repo.ListExpired(ctx, now, s.sweepBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list expired battles: %w", err)
	}
	if len(due) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[string]().WithMaxGoroutines(s.sweepConcurrency)
	for _, item := range due {
		p.Go(func() string {
			transitioned, err := s.settle(ctx, item, now)
			if err != nil {
				s.logger.WarnContext(ctx, "settle expired battle failed",
					"battle_id", item.ID,
					"status", string(item.Status),
					"error", err,
				)
				return ""
			}
			if !transitioned {
				return ""
			}
			return item.ID
		})
	}

	affected := make([]string, 0, len(due))
	for _, battleID := range p.Wait() {
		if battleID != "" {
			affected = append(affected, battleID)
		}
	}
	sort.Strings(affected)

	if len(affected) > 0 {
		s.logger.InfoContext(ctx, "expired battles settled", "count", len(affected), "scanned", len(due))
	}
	return affected, nil
}

// settle applies the expiry transition for one battle.
func (s *BattleService) settle(ctx context.Context, item battle.Battle, now time.Time) (bool, error) {
	switch item.Status {
	case battle.StatusWaiting:
		cancelled, err := s.repo.Cancel(ctx, item.ID, now)
		if err != nil {
			return false, fmt.Errorf("cancel expired battle: %w", err)
		}
		if cancelled {
			s.deleteOrphanPost(ctx, item)
		}
		return cancelled, nil
	case battle.StatusActive:
		_, transitioned, err := s.finish(ctx, item.ID)
		if err != nil {
			return false, err
		}
		return transitioned, nil
	default:
		return false, nil
	}
}
