package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	battlemock "github.com/riskibarqy/battle-arena/internal/mocks/domain/battle"
	battlestatsmock "github.com/riskibarqy/battle-arena/internal/mocks/domain/battlestats"
	progressmock "github.com/riskibarqy/battle-arena/internal/mocks/domain/progress"
	"github.com/stretchr/testify/mock"
)

func activeBattleFixture() battle.Battle {
	return battle.Battle{
		ID:       "battle-1",
		PostA:    battle.Post{ID: "post-a", AuthorID: "alice"},
		PostB:    &battle.Post{ID: "post-b", AuthorID: "bob"},
		Status:   battle.StatusActive,
		VotesA:   3,
		VotesB:   1,
		Deadline: time.Date(2026, 7, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestVoteService_CastVote_AlreadyVotedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-vote")
	battleRepo := battlemock.NewRepository(t)
	statsRepo := battlestatsmock.NewRepository(t)
	item := activeBattleFixture()

	service := NewVoteService(battleRepo, statsRepo, nil, nil, &sequenceIDGenerator{prefix: "vote"}, battle.DefaultRules(), nil)
	service.now = func() time.Time { return item.Deadline.Add(-time.Hour) }

	battleRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), item.ID).
		Return(item, true, nil).
		Once()
	battleRepo.
		On("CastVote", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), mock.MatchedBy(func(v battle.Vote) bool {
			return v.VoterID == "carol" && v.ChosenPostID == "post-b" && v.ID == "vote-1"
		})).
		Return(battle.Battle{}, battle.ErrAlreadyVoted).
		Once()

	_, err := service.CastVote(ctx, CastVoteInput{VoterID: "carol", BattleID: item.ID, ChosenPostID: "post-b"})
	if !errors.Is(err, ErrConflict) || !errors.Is(err, battle.ErrAlreadyVoted) {
		t.Fatalf("expected already voted conflict, got %v", err)
	}
	statsRepo.AssertNotCalled(t, "IncrementVotesCast", mock.Anything, mock.Anything)
}

func TestVoteService_CastVote_StoreFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	battleRepo := battlemock.NewRepository(t)
	statsRepo := battlestatsmock.NewRepository(t)
	item := activeBattleFixture()
	storeErr := errors.New("connection reset")

	service := NewVoteService(battleRepo, statsRepo, nil, nil, &sequenceIDGenerator{prefix: "vote"}, battle.DefaultRules(), nil)
	service.now = func() time.Time { return item.Deadline.Add(-time.Hour) }

	battleRepo.On("GetByID", mock.Anything, item.ID).Return(item, true, nil).Once()
	battleRepo.On("CastVote", mock.Anything, mock.Anything).Return(battle.Battle{}, storeErr).Once()

	_, err := service.CastVote(ctx, CastVoteInput{VoterID: "carol", BattleID: item.ID, ChosenPostID: "post-a"})
	if !errors.Is(err, storeErr) || errors.Is(err, ErrConflict) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

func TestVoteService_CastVote_StatsFailureIsSwallowedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	battleRepo := battlemock.NewRepository(t)
	statsRepo := battlestatsmock.NewRepository(t)
	item := activeBattleFixture()
	updated := item
	updated.VotesA++

	service := NewVoteService(battleRepo, statsRepo, nil, nil, &sequenceIDGenerator{prefix: "vote"}, battle.DefaultRules(), nil)
	service.now = func() time.Time { return item.Deadline.Add(-time.Hour) }

	battleRepo.On("GetByID", mock.Anything, item.ID).Return(item, true, nil).Once()
	battleRepo.On("CastVote", mock.Anything, mock.Anything).Return(updated, nil).Once()
	statsRepo.On("IncrementVotesCast", mock.Anything, "carol").Return(errors.New("stats down")).Once()

	got, err := service.CastVote(ctx, CastVoteInput{VoterID: "carol", BattleID: item.ID, ChosenPostID: "post-a"})
	if err != nil {
		t.Fatalf("stats failure must not fail the vote: %v", err)
	}
	if got.VotesA != 4 {
		t.Fatalf("expected updated counters, got %+v", got)
	}
}

func TestScoringService_ApplyScore_AddPointsFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := progressmock.NewRepository(t)
	service := NewScoringService(repo, nil, nil, nil)
	service.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	repo.
		On("AddPoints", mock.Anything, "u1", int64(2), time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)).
		Return(progress.ScoreRecord{}, errors.New("deadlock detected")).
		Once()

	if _, err := service.ApplyScore(ctx, "u1", progress.ActionVoteInBattle, progress.ScoreContext{}); err == nil {
		t.Fatalf("expected add points failure to propagate")
	}
	repo.AssertNotCalled(t, "RaiseLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScoringService_ApplyScore_LostRaiseDoesNotReportUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := progressmock.NewRepository(t)
	service := NewScoringService(repo, nil, nil, nil)

	repo.
		On("AddPoints", mock.Anything, "u1", int64(50), mock.Anything).
		Return(progress.ScoreRecord{UserID: "u1", CumulativePoints: 1000, Level: 4}, nil).
		Once()
	repo.
		On("RaiseLevel", mock.Anything, "u1", 5, mock.Anything).
		Return(5, false, nil).
		Once()

	result, err := service.ApplyScore(ctx, "u1", progress.ActionWinBattle, progress.ScoreContext{})
	if err != nil {
		t.Fatalf("apply score: %v", err)
	}
	if result.LeveledUp || result.NewLevel != 5 || result.PreviousLevel != 5 {
		t.Fatalf("a raise lost to a concurrent scorer must not report level up: %+v", result)
	}
	repo.AssertNotCalled(t, "UnlockAchievement", mock.Anything, mock.Anything)
}

type finisherFunc func(ctx context.Context, battleID string) (battle.Battle, error)

func (f finisherFunc) FinishBattle(ctx context.Context, battleID string) (battle.Battle, error) {
	return f(ctx, battleID)
}

func TestVoteService_CastVote_ExpiredSettlesWithoutStoringUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	battleRepo := battlemock.NewRepository(t)
	statsRepo := battlestatsmock.NewRepository(t)
	item := activeBattleFixture()

	var finished []string
	finisher := finisherFunc(func(_ context.Context, battleID string) (battle.Battle, error) {
		finished = append(finished, battleID)
		return battle.Battle{}, errors.New("finish unavailable")
	})
	service := NewVoteService(battleRepo, statsRepo, nil, finisher, &sequenceIDGenerator{prefix: "vote"}, battle.DefaultRules(), nil)
	service.now = func() time.Time { return item.Deadline }

	battleRepo.On("GetByID", mock.Anything, item.ID).Return(item, true, nil).Once()

	_, err := service.CastVote(ctx, CastVoteInput{VoterID: "carol", BattleID: item.ID, ChosenPostID: "post-a"})
	if !errors.Is(err, ErrConflict) || !errors.Is(err, battle.ErrBattleNotActive) {
		t.Fatalf("expected not active conflict at the deadline, got %v", err)
	}
	if len(finished) != 1 || finished[0] != item.ID {
		t.Fatalf("expected the expired battle to be finished once, got %v", finished)
	}
	battleRepo.AssertNotCalled(t, "CastVote", mock.Anything, mock.Anything)
	statsRepo.AssertNotCalled(t, "IncrementVotesCast", mock.Anything, mock.Anything)
}
