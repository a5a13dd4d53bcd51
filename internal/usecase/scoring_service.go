package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// PremiumResolver looks up the premium flag from the account service.
type PremiumResolver interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type scoreApplier interface {
	ApplyScore(ctx context.Context, userID string, kind progress.ActionKind, sc progress.ScoreContext) (progress.ScoreResult, error)
}

type ScoreSummary struct {
	Record       progress.ScoreRecord
	Achievements []progress.Achievement
}

type ScoringService struct {
	repo       progress.Repository
	actions    progress.ActionTable
	levels     progress.LevelTable
	milestones []progress.Milestone
	premium    PremiumResolver
	notifier   event.Notifier
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoringService(
	repo progress.Repository,
	premium PremiumResolver,
	notifier event.Notifier,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		repo:       repo,
		actions:    progress.DefaultActionTable(),
		levels:     progress.DefaultLevelTable(),
		milestones: progress.DefaultMilestones(),
		premium:    premium,
		notifier:   notifier,
		logger:     logger.Named("usecase.scoring"),
		now:        time.Now,
	}
}

// ApplyScore adds the action's points and raises the level when a threshold
// is crossed. Only the call whose raise changed the stored level reports LeveledUp.
func (s *ScoringService) ApplyScore(ctx context.Context, userID string, kind progress.ActionKind, sc progress.ScoreContext) (progress.ScoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ApplyScore", userAttr(userID), attribute.String("score.action", string(kind)))
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return progress.ScoreResult{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if _, ok := s.actions[kind]; !ok {
		return progress.ScoreResult{}, fmt.Errorf("%w: %w: %s", ErrInvalidInput, progress.ErrUnknownAction, kind)
	}

	premium := s.resolvePremium(ctx, userID, sc)
	delta, err := s.actions.Points(kind, premium)
	if err != nil {
		return progress.ScoreResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	record, err := s.repo.AddPoints(ctx, userID, delta, now)
	if err != nil {
		return progress.ScoreResult{}, fmt.Errorf("add points user=%s action=%s: %w", userID, kind, err)
	}

	target := s.levels.LevelFor(record.CumulativePoints)
	previous, raised, err := s.repo.RaiseLevel(ctx, userID, target, now)
	if err != nil {
		return progress.ScoreResult{}, fmt.Errorf("raise level user=%s: %w", userID, err)
	}

	result := progress.ScoreResult{
		Action:        kind,
		Delta:         delta,
		Total:         record.CumulativePoints,
		PreviousLevel: previous,
		NewLevel:      max(previous, target),
		LeveledUp:     raised,
	}
	if !raised {
		return result, nil
	}

	s.notify(ctx, event.Event{
		Kind:     event.KindLevelUp,
		UserID:   userID,
		BattleID: sc.BattleID,
		Payload: map[string]any{
			"previous_level": previous,
			"new_level":      target,
			"total_points":   record.CumulativePoints,
		},
	})

	for _, m := range progress.MilestonesCrossed(s.milestones, previous, target) {
		achievement := progress.Achievement{UserID: userID, Code: m.Code, Level: m.Level, UnlockedAt: now}
		created, err := s.repo.UnlockAchievement(ctx, achievement)
		if err != nil {
			s.logger.WarnContext(ctx, "unlock achievement failed", "user_id", userID, "code", m.Code, "error", err)
			continue
		}
		if !created {
			continue
		}
		result.Unlocked = append(result.Unlocked, achievement)
		s.notify(ctx, event.Event{
			Kind:    event.KindAchievementUnlocked,
			UserID:  userID,
			Payload: map[string]any{"code": m.Code, "level": m.Level},
		})
	}

	return result, nil
}

func (s *ScoringService) GetScore(ctx context.Context, userID string) (ScoreSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetScore")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ScoreSummary{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	record, exists, err := s.repo.Get(ctx, userID)
	if err != nil {
		return ScoreSummary{}, fmt.Errorf("get score record: %w", err)
	}
	if !exists {
		record = progress.ScoreRecord{UserID: userID, Level: s.levels.LevelFor(0)}
	}

	achievements, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return ScoreSummary{}, fmt.Errorf("list achievements: %w", err)
	}

	return ScoreSummary{Record: record, Achievements: achievements}, nil
}

func (s *ScoringService) resolvePremium(ctx context.Context, userID string, sc progress.ScoreContext) bool {
	if sc.Premium != nil {
		return *sc.Premium
	}
	if s.premium == nil {
		return false
	}

	premium, err := s.premium.IsPremium(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "premium lookup failed, scoring at base rate", "user_id", userID, "error", err)
		return false
	}
	return premium
}

func (s *ScoringService) notify(ctx context.Context, evt event.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, evt)
}
