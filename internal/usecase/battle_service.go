package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/platform/id"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

const (
	defaultSweepBatchSize   = 100
	defaultSweepConcurrency = 4
)

type SubmitEntryInput struct {
	AuthorID string
	Content  string
	ImageRef string
	// Premium is forwarded to scoring when the caller already knows it.
	Premium *bool
}

type HistoryPage struct {
	Limit  int
	Offset int
}

type BattleServiceConfig struct {
	Rules            battle.Rules
	SweepBatchSize   int
	SweepConcurrency int
}

// BattleService is the only writer of battle state.
type BattleService struct {
	repo     battle.Repository
	stats    battlestats.Repository
	scorer   scoreApplier
	notifier event.Notifier
	ids      id.Generator
	rules    battle.Rules

	sweepBatchSize   int
	sweepConcurrency int

	logger *logging.Logger
	now    func() time.Time
}

func NewBattleService(
	repo battle.Repository,
	stats battlestats.Repository,
	scorer scoreApplier,
	notifier event.Notifier,
	ids id.Generator,
	cfg BattleServiceConfig,
	logger *logging.Logger,
) *BattleService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = defaultSweepConcurrency
	}

	return &BattleService{
		repo:             repo,
		stats:            stats,
		scorer:           scorer,
		notifier:         notifier,
		ids:              ids,
		rules:            cfg.Rules.Normalize(),
		sweepBatchSize:   cfg.SweepBatchSize,
		sweepConcurrency: cfg.SweepConcurrency,
		logger:           logger.Named("usecase.battle"),
		now:              time.Now,
	}
}

func (s *BattleService) Rules() battle.Rules {
	return s.rules
}

// SubmitEntry joins the oldest joinable battle or opens a new waiting one.
func (s *BattleService) SubmitEntry(ctx context.Context, input SubmitEntryInput) (battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.SubmitEntry")
	defer span.End()

	input.AuthorID = strings.TrimSpace(input.AuthorID)
	input.Content = strings.TrimSpace(input.Content)
	input.ImageRef = strings.TrimSpace(input.ImageRef)
	if input.AuthorID == "" {
		return battle.Battle{}, fmt.Errorf("%w: author_id is required", ErrInvalidInput)
	}
	if err := battle.ValidatePostContent(input.Content, input.ImageRef, s.rules); err != nil {
		return battle.Battle{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	if err := s.ensureNoOpenEntry(ctx, input.AuthorID, now); err != nil {
		return battle.Battle{}, err
	}

	postID, err := s.ids.NewID()
	if err != nil {
		return battle.Battle{}, fmt.Errorf("generate post id: %w", err)
	}
	post := battle.Post{
		ID:        postID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		ImageRef:  input.ImageRef,
		CreatedAt: now,
	}

	result, joined, err := s.tryJoin(ctx, post, now)
	if err != nil {
		return battle.Battle{}, err
	}
	if !joined {
		result, err = s.openBattle(ctx, post, now)
		if err != nil {
			return battle.Battle{}, err
		}
	}

	s.award(ctx, input.AuthorID, progress.ActionCreatePost, progress.ScoreContext{
		Premium:  input.Premium,
		BattleID: result.ID,
	})

	return result, nil
}

func (s *BattleService) ensureNoOpenEntry(ctx context.Context, authorID string, now time.Time) error {
	open, exists, err := s.repo.FindOpenByAuthor(ctx, authorID)
	if err != nil {
		return fmt.Errorf("find open battle by author: %w", err)
	}
	if !exists {
		return nil
	}
	if open.IsExpired(now) {
		if _, err := s.settle(ctx, open, now); err != nil {
			return fmt.Errorf("settle expired battle %s: %w", open.ID, err)
		}
		return nil
	}

	return fmt.Errorf("%w: %w: battle_id=%s", ErrConflict, battle.ErrDuplicateEntry, open.ID)
}

// tryJoin attempts the waiting to active transition. Losing the race is not an
// error; the caller falls back to opening a new battle with the same post.
func (s *BattleService) tryJoin(ctx context.Context, post battle.Post, now time.Time) (battle.Battle, bool, error) {
	candidate, exists, err := s.repo.FindJoinable(ctx, post.AuthorID, now)
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("find joinable battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, false, nil
	}

	joined, err := s.repo.Join(ctx, candidate.ID, post, now.Add(s.rules.VotingWindow), now)
	if err != nil {
		return battle.Battle{}, false, entryConflict(fmt.Errorf("join battle %s: %w", candidate.ID, err))
	}
	if !joined {
		s.logger.InfoContext(ctx, "join race lost, opening new battle",
			"battle_id", candidate.ID,
			"author_id", post.AuthorID,
		)
		return battle.Battle{}, false, nil
	}

	current, exists, err := s.repo.GetByID(ctx, candidate.ID)
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("reload joined battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, false, fmt.Errorf("%w: battle_id=%s", ErrNotFound, candidate.ID)
	}

	s.notify(ctx, event.Event{
		Kind:     event.KindChallengeIssued,
		UserID:   current.AuthorAID(),
		BattleID: current.ID,
		Payload: map[string]any{
			"challenger_id": post.AuthorID,
			"post_id":       post.ID,
			"deadline":      current.Deadline,
		},
	})

	return current, true, nil
}

func (s *BattleService) openBattle(ctx context.Context, post battle.Post, now time.Time) (battle.Battle, error) {
	battleID, err := s.ids.NewID()
	if err != nil {
		return battle.Battle{}, fmt.Errorf("generate battle id: %w", err)
	}

	item := battle.Battle{
		ID:        battleID,
		PostA:     post,
		Status:    battle.StatusWaiting,
		CreatedAt: now,
		Deadline:  now.Add(s.rules.MatchmakingWindow),
	}
	if err := item.ValidateBasic(); err != nil {
		return battle.Battle{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return battle.Battle{}, entryConflict(fmt.Errorf("create battle: %w", err))
	}

	return item, nil
}

// entryConflict marks a lost open-entry claim as a conflict.
func entryConflict(err error) error {
	if errors.Is(err, battle.ErrDuplicateEntry) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// Withdraw cancels the caller's unopposed battle.
func (s *BattleService) Withdraw(ctx context.Context, authorID, battleID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.Withdraw", battleAttr(battleID), userAttr(authorID))
	defer span.End()

	authorID = strings.TrimSpace(authorID)
	battleID = strings.TrimSpace(battleID)
	if authorID == "" || battleID == "" {
		return fmt.Errorf("%w: author_id and battle_id are required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, battleID)
	if err != nil {
		return fmt.Errorf("get battle: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: battle_id=%s", ErrNotFound, battleID)
	}
	if item.AuthorAID() != authorID {
		return fmt.Errorf("%w: %w", ErrUnauthorized, battle.ErrNotOwner)
	}

	cancelled, err := s.repo.Cancel(ctx, battleID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("cancel battle: %w", err)
	}
	if !cancelled {
		return fmt.Errorf("%w: %w: status=%s", ErrInvalidState, battle.ErrNotCancellable, item.Status)
	}

	s.deleteOrphanPost(ctx, item)
	return nil
}

func (s *BattleService) deleteOrphanPost(ctx context.Context, item battle.Battle) {
	if err := s.repo.DeletePost(ctx, item.PostA.ID); err != nil {
		s.logger.WarnContext(ctx, "delete orphan post failed",
			"battle_id", item.ID,
			"post_id", item.PostA.ID,
			"error", err,
		)
	}
}

// GetActiveBattle returns the user's open battle. An expired battle is
// settled on read and reported as not found.
func (s *BattleService) GetActiveBattle(ctx context.Context, userID string) (battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.GetActiveBattle")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return battle.Battle{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.FindOpenByAuthor(ctx, userID)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("find open battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, fmt.Errorf("%w: no open battle for user", ErrNotFound)
	}

	now := s.now().UTC()
	if item.IsExpired(now) {
		if _, err := s.settle(ctx, item, now); err != nil {
			s.logger.WarnContext(ctx, "lazy settle failed", "battle_id", item.ID, "error", err)
		}
		return battle.Battle{}, fmt.Errorf("%w: no open battle for user", ErrNotFound)
	}

	return item, nil
}

func (s *BattleService) GetBattle(ctx context.Context, battleID string) (battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.GetBattle", battleAttr(battleID))
	defer span.End()

	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return battle.Battle{}, fmt.Errorf("%w: battle_id is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, battleID)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("get battle: %w", err)
	}
	if !exists {
		return battle.Battle{}, fmt.Errorf("%w: battle_id=%s", ErrNotFound, battleID)
	}

	return item, nil
}

func (s *BattleService) ListActiveBattles(ctx context.Context, limit int) ([]battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.ListActiveBattles")
	defer span.End()

	items, err := s.repo.ListActive(ctx, s.rules.PageLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list active battles: %w", err)
	}

	now := s.now().UTC()
	out := items[:0]
	for _, item := range items {
		if item.IsExpired(now) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *BattleService) GetUserBattleStats(ctx context.Context, userID string) (battlestats.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.GetUserBattleStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return battlestats.Stats{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	stats, exists, err := s.stats.Get(ctx, userID)
	if err != nil {
		return battlestats.Stats{}, fmt.Errorf("get battle stats: %w", err)
	}
	if !exists {
		return battlestats.Stats{UserID: userID}, nil
	}
	return stats, nil
}

func (s *BattleService) GetUserBattleHistory(ctx context.Context, userID string, page HistoryPage) ([]battle.Battle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BattleService.GetUserBattleHistory")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if page.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", ErrInvalidInput)
	}

	items, err := s.repo.ListByAuthor(ctx, userID, s.rules.PageLimit(page.Limit), page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list battles by author: %w", err)
	}
	return items, nil
}

func (s *BattleService) award(ctx context.Context, userID string, kind progress.ActionKind, sc progress.ScoreContext) {
	if s.scorer == nil {
		return
	}
	if _, err := s.scorer.ApplyScore(ctx, userID, kind, sc); err != nil {
		s.logger.WarnContext(ctx, "apply score failed",
			"user_id", userID,
			"action", string(kind),
			"battle_id", sc.BattleID,
			"error", err,
		)
	}
}

func (s *BattleService) notify(ctx context.Context, evt event.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, evt)
}
