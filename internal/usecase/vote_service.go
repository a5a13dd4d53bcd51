package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/platform/id"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

type CastVoteInput struct {
	VoterID      string
	BattleID     string
	ChosenPostID string
	Premium      *bool
}

type battleFinisher interface {
	FinishBattle(ctx context.Context, battleID string) (battle.Battle, error)
}

// VoteService records exactly one vote per voter and battle.
type VoteService struct {
	repo     battle.Repository
	stats    battlestats.Repository
	scorer   scoreApplier
	finisher battleFinisher
	ids      id.Generator
	rules    battle.Rules
	logger   *logging.Logger
	now      func() time.Time
}

func NewVoteService(
	repo battle.Repository,
	stats battlestats.Repository,
	scorer scoreApplier,
	finisher battleFinisher,
	ids id.Generator,
	rules battle.Rules,
	logger *logging.Logger,
) *VoteService {
	if logger == nil {
		logger = logging.Default()
	}
	return &VoteService{
		repo:     repo,
		stats:    stats,
		scorer:   scorer,
		finisher: finisher,
		ids:      ids,
		rules:    rules.Normalize(),
		logger:   logger.Named("usecase.vote"),
		now:      time.Now,
	}
}

// CanVote is a read-only eligibility check; CastVote re-validates atomically.
func (s *VoteService) CanVote(ctx context.Context, voterID, battleID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VoteService.CanVote", battleAttr(battleID), userAttr(voterID))
	defer span.End()

	voterID = strings.TrimSpace(voterID)
	battleID = strings.TrimSpace(battleID)
	if voterID == "" || battleID == "" {
		return false, fmt.Errorf("%w: voter_id and battle_id are required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, battleID)
	if err != nil {
		return false, fmt.Errorf("get battle: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: battle_id=%s", ErrNotFound, battleID)
	}
	if item.Status != battle.StatusActive || item.IsExpired(s.now().UTC()) || item.IsAuthor(voterID) {
		return false, nil
	}

	voted, err := s.repo.HasVoted(ctx, voterID, battleID)
	if err != nil {
		return false, fmt.Errorf("check existing vote: %w", err)
	}
	return !voted, nil
}

// CastVote records the vote and finishes the battle when the threshold is reached.
// The returned battle reflects the resolution when this vote triggered it.
func (s *VoteService) CastVote(ctx context.Context, input CastVoteInput) (battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VoteService.CastVote", battleAttr(input.BattleID), userAttr(input.VoterID))
	defer span.End()

	input.VoterID = strings.TrimSpace(input.VoterID)
	input.BattleID = strings.TrimSpace(input.BattleID)
	input.ChosenPostID = strings.TrimSpace(input.ChosenPostID)
	if input.VoterID == "" || input.BattleID == "" {
		return battle.Battle{}, fmt.Errorf("%w: voter_id and battle_id are required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, input.BattleID)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("get battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, fmt.Errorf("%w: battle_id=%s", ErrNotFound, input.BattleID)
	}
	if item.Status != battle.StatusActive {
		return battle.Battle{}, fmt.Errorf("%w: %w: status=%s", ErrConflict, battle.ErrBattleNotActive, item.Status)
	}
	now := s.now().UTC()
	if item.IsExpired(now) {
		s.finishExpired(ctx, item.ID)
		return battle.Battle{}, fmt.Errorf("%w: %w: voting closed at %s", ErrConflict, battle.ErrBattleNotActive, item.Deadline.Format(time.RFC3339))
	}
	if item.IsAuthor(input.VoterID) {
		return battle.Battle{}, fmt.Errorf("%w: %w", ErrConflict, battle.ErrSelfVote)
	}
	if _, ok := item.Side(input.ChosenPostID); !ok {
		return battle.Battle{}, fmt.Errorf("%w: %w: post_id=%s", ErrInvalidInput, battle.ErrInvalidChoice, input.ChosenPostID)
	}

	voteID, err := s.ids.NewID()
	if err != nil {
		return battle.Battle{}, fmt.Errorf("generate vote id: %w", err)
	}
	updated, err := s.repo.CastVote(ctx, battle.Vote{
		ID:           voteID,
		VoterID:      input.VoterID,
		BattleID:     input.BattleID,
		ChosenPostID: input.ChosenPostID,
		CreatedAt:    now,
	})
	switch {
	case errors.Is(err, battle.ErrAlreadyVoted), errors.Is(err, battle.ErrBattleNotActive):
		return battle.Battle{}, fmt.Errorf("%w: %w", ErrConflict, err)
	case err != nil:
		return battle.Battle{}, fmt.Errorf("cast vote: %w", err)
	}

	if err := s.stats.IncrementVotesCast(ctx, input.VoterID); err != nil {
		s.logger.WarnContext(ctx, "increment votes cast failed", "user_id", input.VoterID, "error", err)
	}
	if s.scorer != nil {
		if _, err := s.scorer.ApplyScore(ctx, input.VoterID, progress.ActionVoteInBattle, progress.ScoreContext{
			Premium:  input.Premium,
			BattleID: input.BattleID,
		}); err != nil {
			s.logger.WarnContext(ctx, "apply vote score failed", "user_id", input.VoterID, "error", err)
		}
	}

	if !battle.ReachedThreshold(updated, s.rules) || s.finisher == nil {
		return updated, nil
	}

	finished, err := s.finisher.FinishBattle(ctx, updated.ID)
	if err != nil {
		// The vote is stored; the sweep resolves the battle at its deadline.
		s.logger.WarnContext(ctx, "finish on threshold failed", "battle_id", updated.ID, "error", err)
		return updated, nil
	}
	return finished, nil
}

// finishExpired settles a battle whose voting window closed before the sweep reached it.
func (s *VoteService) finishExpired(ctx context.Context, battleID string) {
	if s.finisher == nil {
		return
	}
	if _, err := s.finisher.FinishBattle(ctx, battleID); err != nil {
		s.logger.WarnContext(ctx, "finish expired battle failed", "battle_id", battleID, "error", err)
	}
}
