package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/sourcegraph/conc"
)

// FinishBattle resolves an active battle. Calling it again on a finished
// battle returns the stored state without side effects.
func (s *BattleService) FinishBattle(ctx context.Context, battleID string) (battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.FinishBattle", battleAttr(battleID))
	defer span.End()

	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return battle.Battle{}, fmt.Errorf("%w: battle_id is required", ErrInvalidInput)
	}

	item, _, err := s.finish(ctx, battleID)
	return item, err
}

// finish reports whether this call performed the active to finished transition.
func (s *BattleService) finish(ctx context.Context, battleID string) (battle.Battle, bool, error) {
	current, exists, err := s.repo.GetByID(ctx, battleID)
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("get battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, false, fmt.Errorf("%w: battle_id=%s", ErrNotFound, battleID)
	}

	switch current.Status {
	case battle.StatusFinished:
		return current, false, nil
	case battle.StatusActive:
	default:
		return current, false, fmt.Errorf("%w: %w: status=%s", ErrInvalidState, battle.ErrNotFinishable, current.Status)
	}

	finished, won, err := s.repo.Finish(ctx, battleID, s.now().UTC())
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("finish battle: %w", err)
	}
	if !won {
		latest, exists, err := s.repo.GetByID(ctx, battleID)
		if err != nil {
			return battle.Battle{}, false, fmt.Errorf("reload battle: %w", err)
		}
		if !exists {
			return battle.Battle{}, false, fmt.Errorf("%w: battle_id=%s", ErrNotFound, battleID)
		}
		if latest.Status != battle.StatusFinished {
			return latest, false, fmt.Errorf("%w: %w: status=%s", ErrInvalidState, battle.ErrNotFinishable, latest.Status)
		}
		return latest, false, nil
	}

	s.applyFinishEffects(ctx, finished)
	return finished, true, nil
}

type participantOutcome struct {
	userID  string
	outcome battlestats.Outcome
	action  progress.ActionKind
}

func outcomesFor(item battle.Battle) []participantOutcome {
	authorA := item.AuthorAID()
	authorB := item.AuthorBID()

	switch battle.DetermineWinner(item.VotesA, item.VotesB) {
	case battle.SideA:
		return []participantOutcome{
			{userID: authorA, outcome: battlestats.OutcomeWin, action: progress.ActionWinBattle},
			{userID: authorB, outcome: battlestats.OutcomeLoss, action: progress.ActionLoseBattle},
		}
	case battle.SideB:
		return []participantOutcome{
			{userID: authorA, outcome: battlestats.OutcomeLoss, action: progress.ActionLoseBattle},
			{userID: authorB, outcome: battlestats.OutcomeWin, action: progress.ActionWinBattle},
		}
	default:
		return []participantOutcome{
			{userID: authorA, outcome: battlestats.OutcomeDraw, action: progress.ActionDrawBattle},
			{userID: authorB, outcome: battlestats.OutcomeDraw, action: progress.ActionDrawBattle},
		}
	}
}

// applyFinishEffects runs once per battle, only for the caller that won the
// finish transition. Failures are logged and never undo the transition.
func (s *BattleService) applyFinishEffects(ctx context.Context, item battle.Battle) {
	var wg conc.WaitGroup
	for _, p := range outcomesFor(item) {
		if p.userID == "" {
			continue
		}
		wg.Go(func() {
			s.settleParticipant(ctx, item, p)
		})
	}
	wg.Go(func() {
		s.backfillCorrectVotes(ctx, item)
	})
	wg.Wait()

	s.logger.InfoContext(ctx, "battle finished",
		"battle_id", item.ID,
		"votes_a", item.VotesA,
		"votes_b", item.VotesB,
		"winner_post_id", item.WinnerPostID,
	)
}

func (s *BattleService) settleParticipant(ctx context.Context, item battle.Battle, p participantOutcome) {
	streak, err := s.stats.RecordOutcome(ctx, p.userID, p.outcome)
	if err != nil {
		s.logger.WarnContext(ctx, "record battle outcome failed",
			"battle_id", item.ID,
			"user_id", p.userID,
			"outcome", string(p.outcome),
			"error", err,
		)
	}

	sc := progress.ScoreContext{BattleID: item.ID, Reason: string(p.outcome)}
	s.award(ctx, p.userID, p.action, sc)
	if bonus, ok := progress.WinStreakAction(streak.Milestone); ok {
		s.award(ctx, p.userID, bonus, sc)
	}

	s.notify(ctx, event.Event{
		Kind:     event.KindBattleFinished,
		UserID:   p.userID,
		BattleID: item.ID,
		Payload: map[string]any{
			"outcome":        string(p.outcome),
			"votes_a":        item.VotesA,
			"votes_b":        item.VotesB,
			"winner_post_id": item.WinnerPostID,
			"current_streak": streak.CurrentStreak,
			"best_streak":    streak.BestStreak,
		},
	})
}

func (s *BattleService) backfillCorrectVotes(ctx context.Context, item battle.Battle) {
	if item.WinnerPostID == "" {
		return
	}

	votes, err := s.repo.ListVotes(ctx, item.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "list votes for backfill failed", "battle_id", item.ID, "error", err)
		return
	}

	voters := make([]string, 0, len(votes))
	for _, v := range votes {
		if v.ChosenPostID == item.WinnerPostID {
			voters = append(voters, v.VoterID)
		}
	}
	if len(voters) == 0 {
		return
	}

	if err := s.stats.IncrementCorrectVotes(ctx, voters); err != nil {
		s.logger.WarnContext(ctx, "backfill correct votes failed",
			"battle_id", item.ID,
			"voter_count", len(voters),
			"error", err,
		)
	}
}
