package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/memory"
)

func TestBattleService_SubmitEntry_OpensThenJoins(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	opened, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "  I invented the sandwich  "})
	if err != nil {
		t.Fatalf("submit entry: %v", err)
	}
	if opened.Status != battle.StatusWaiting || opened.PostB != nil {
		t.Fatalf("expected waiting battle, got %+v", opened)
	}
	if opened.PostA.Content != "I invented the sandwich" {
		t.Fatalf("expected trimmed content, got %q", opened.PostA.Content)
	}
	if want := f.now.Add(5 * 24 * time.Hour); !opened.Deadline.Equal(want) {
		t.Fatalf("unexpected matchmaking deadline %s want %s", opened.Deadline, want)
	}

	f.now = f.now.Add(time.Hour)
	joined, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "bob", Content: "I am secretly three raccoons"})
	if err != nil {
		t.Fatalf("join entry: %v", err)
	}
	if joined.ID != opened.ID || joined.Status != battle.StatusActive || joined.PostB == nil {
		t.Fatalf("expected bob to join alice's battle, got %+v", joined)
	}
	if want := f.now.Add(24 * time.Hour); !joined.Deadline.Equal(want) {
		t.Fatalf("unexpected voting deadline %s want %s", joined.Deadline, want)
	}
	if joined.VotesA != 0 || joined.VotesB != 0 {
		t.Fatalf("joined battle must start with zero votes")
	}

	challenges := f.events.byKind(event.KindChallengeIssued)
	if len(challenges) != 1 || challenges[0].UserID != "alice" {
		t.Fatalf("expected one challenge for alice, got %+v", challenges)
	}

	score, err := f.scoring.GetScore(ctx, "bob")
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if score.Record.CumulativePoints != 10 {
		t.Fatalf("expected CREATE_POST points for bob, got %d", score.Record.CumulativePoints)
	}
}

func TestBattleService_SubmitEntry_Validation(t *testing.T) {
	f := newArenaFixture(t)

	tests := []struct {
		name   string
		input  SubmitEntryInput
		domain error
	}{
		{name: "missing author", input: SubmitEntryInput{Content: "x"}},
		{name: "empty content", input: SubmitEntryInput{AuthorID: "alice", Content: "   "}, domain: battle.ErrContentEmpty},
		{name: "content too long", input: SubmitEntryInput{AuthorID: "alice", Content: strings.Repeat("z", 281)}, domain: battle.ErrContentTooLong},
		{name: "image ref too long", input: SubmitEntryInput{AuthorID: "alice", Content: "ok", ImageRef: strings.Repeat("i", 600)}, domain: battle.ErrImageRefTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.battle.SubmitEntry(t.Context(), tt.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if tt.domain != nil && !errors.Is(err, tt.domain) {
				t.Fatalf("expected %v, got %v", tt.domain, err)
			}
		})
	}
}

func TestBattleService_SubmitEntry_DuplicateEntry(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	if _, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "first"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "second"})
	if !errors.Is(err, ErrConflict) || !errors.Is(err, battle.ErrDuplicateEntry) {
		t.Fatalf("expected duplicate entry conflict, got %v", err)
	}

	// Still blocked once the battle is active.
	if _, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "bob", Content: "join"}); err != nil {
		t.Fatalf("bob submit: %v", err)
	}
	if _, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "bob", Content: "again"}); !errors.Is(err, battle.ErrDuplicateEntry) {
		t.Fatalf("expected duplicate entry for active author, got %v", err)
	}
}

// stallingBattles holds every FindOpenByAuthor caller until all of them have
// read, so the pre-check alone cannot serialize same-author submissions.
type stallingBattles struct {
	*memory.BattleRepository
	arrived sync.WaitGroup
}

func (r *stallingBattles) FindOpenByAuthor(ctx context.Context, authorID string) (battle.Battle, bool, error) {
	item, ok, err := r.BattleRepository.FindOpenByAuthor(ctx, authorID)
	r.arrived.Done()
	r.arrived.Wait()
	return item, ok, err
}

func TestBattleService_SubmitEntry_ConcurrentSameAuthor(t *testing.T) {
	ctx := t.Context()
	repo := &stallingBattles{BattleRepository: memory.NewBattleRepository()}
	service := NewBattleService(repo, memory.NewBattleStatsRepository(), nil, nil, &sequenceIDGenerator{prefix: "id"}, BattleServiceConfig{
		Rules: battle.DefaultRules(),
	}, nil)

	const submits = 2
	repo.arrived.Add(submits)
	errs := make([]error, submits)
	var wg sync.WaitGroup
	for i := range submits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = service.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: fmt.Sprintf("entry %d", i)})
		}()
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict) && errors.Is(err, battle.ErrDuplicateEntry):
			conflicts++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if succeeded != 1 || conflicts != 1 {
		t.Fatalf("expected one entry and one conflict, got ok=%d conflict=%d", succeeded, conflicts)
	}

	history, err := repo.ListByAuthor(ctx, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(history) != 1 || history[0].Status != battle.StatusWaiting {
		t.Fatalf("expected exactly one open battle for alice, got %+v", history)
	}
}

func TestBattleService_SubmitEntry_ExpiredOpenEntryDoesNotBlock(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	first, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "first"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	f.now = f.now.Add(6 * 24 * time.Hour)
	second, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "second"})
	if err != nil {
		t.Fatalf("second submit after expiry: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a new battle")
	}
	old, _, _ := f.battles.GetByID(ctx, first.ID)
	if old.Status != battle.StatusCancelled {
		t.Fatalf("expected expired battle cancelled, got %s", old.Status)
	}
}

func TestBattleService_SubmitEntry_JoinRace(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	waiting, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "open"})
	if err != nil {
		t.Fatalf("alice submit: %v", err)
	}

	authors := []string{"bob", "carol"}
	results := make([]battle.Battle, len(authors))
	errs := make([]error, len(authors))
	var wg sync.WaitGroup
	for i, author := range authors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: author, Content: "race " + author})
		}()
	}
	wg.Wait()

	active, newWaiting := 0, 0
	for i := range authors {
		if errs[i] != nil {
			t.Fatalf("submit %s: %v", authors[i], errs[i])
		}
		switch {
		case results[i].ID == waiting.ID && results[i].Status == battle.StatusActive:
			active++
		case results[i].ID != waiting.ID && results[i].Status == battle.StatusWaiting:
			newWaiting++
		default:
			t.Fatalf("unexpected result for %s: %+v", authors[i], results[i])
		}
	}
	if active != 1 || newWaiting != 1 {
		t.Fatalf("expected one join and one new waiting battle, got active=%d waiting=%d", active, newWaiting)
	}

	joined, _, _ := f.battles.GetByID(ctx, waiting.ID)
	if joined.PostB == nil || joined.AuthorAID() != "alice" {
		t.Fatalf("expected both posts attached, got %+v", joined)
	}
}

func TestBattleService_Withdraw(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	opened, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "lonely"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.battle.Withdraw(ctx, "mallory", opened.ID); !errors.Is(err, ErrUnauthorized) || !errors.Is(err, battle.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if err := f.battle.Withdraw(ctx, "alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.battle.Withdraw(ctx, "alice", opened.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	item, _, _ := f.battles.GetByID(ctx, opened.ID)
	if item.Status != battle.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", item.Status)
	}
	if !f.battles.postDeleted(opened.PostA.ID) {
		t.Fatalf("expected orphan post deleted")
	}
	if err := f.battle.Withdraw(ctx, "alice", opened.ID); !errors.Is(err, ErrInvalidState) || !errors.Is(err, battle.ErrNotCancellable) {
		t.Fatalf("expected not cancellable on second withdraw, got %v", err)
	}
}

func TestBattleService_Withdraw_ActiveBattle(t *testing.T) {
	f := newArenaFixture(t)
	item := f.activeBattle(t)

	err := f.battle.Withdraw(t.Context(), "alice", item.ID)
	if !errors.Is(err, ErrInvalidState) || !errors.Is(err, battle.ErrNotCancellable) {
		t.Fatalf("expected not cancellable for active battle, got %v", err)
	}
}

func TestBattleService_FinishBattle_Idempotent(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()
	item := f.activeBattle(t)

	for i := 0; i < 3; i++ {
		if _, err := f.votes.CastVote(ctx, CastVoteInput{VoterID: fmt.Sprintf("v%d", i), BattleID: item.ID, ChosenPostID: item.PostB.ID}); err != nil {
			t.Fatalf("cast vote: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if _, err := f.battle.FinishBattle(ctx, item.ID); err != nil {
					t.Errorf("finish: %v", err)
				}
				return
			}
			if _, err := f.battle.ExpireStaleBattles(ctx, f.now.Add(48*time.Hour)); err != nil {
				t.Errorf("sweep: %v", err)
			}
		}(i)
	}
	wg.Wait()

	first, err := f.battle.FinishBattle(ctx, item.ID)
	if err != nil {
		t.Fatalf("finish again: %v", err)
	}
	if first.Status != battle.StatusFinished || first.WinnerPostID != item.PostB.ID || first.VotesB != 3 || first.VotesA != 0 {
		t.Fatalf("unexpected finished battle: %+v", first)
	}

	for _, user := range []string{"alice", "bob"} {
		stats, _ := f.battle.GetUserBattleStats(ctx, user)
		if stats.TotalBattles != 1 {
			t.Fatalf("expected one recorded battle for %s, got %d", user, stats.TotalBattles)
		}
	}
	if got := len(f.events.byKind(event.KindBattleFinished)); got != 2 {
		t.Fatalf("expected two battle_finished events, got %d", got)
	}
}

func TestBattleService_FinishBattle_InvalidStates(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	if _, err := f.battle.FinishBattle(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	opened, _ := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "waiting"})
	if _, err := f.battle.FinishBattle(ctx, opened.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state for waiting battle, got %v", err)
	}
}

func TestBattleService_FinishBattle_DrawHasNoWinner(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()
	item := f.activeBattle(t)

	_, _ = f.votes.CastVote(ctx, CastVoteInput{VoterID: "v1", BattleID: item.ID, ChosenPostID: item.PostA.ID})
	_, _ = f.votes.CastVote(ctx, CastVoteInput{VoterID: "v2", BattleID: item.ID, ChosenPostID: item.PostB.ID})

	finished, err := f.battle.FinishBattle(ctx, item.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.WinnerPostID != "" {
		t.Fatalf("draw must not set a winner, got %q", finished.WinnerPostID)
	}
	for _, user := range []string{"alice", "bob"} {
		stats, _ := f.battle.GetUserBattleStats(ctx, user)
		if stats.Draws != 1 || stats.CurrentStreak != 0 {
			t.Fatalf("unexpected stats for %s: %+v", user, stats)
		}
	}
	voter, _ := f.battle.GetUserBattleStats(ctx, "v1")
	if voter.CorrectVotes != 0 || voter.TotalVotesCast != 1 {
		t.Fatalf("unexpected voter stats after draw: %+v", voter)
	}
}

func TestBattleService_ExpireStaleBattles(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	lonely, _ := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "zed", Content: "nobody came"})
	f.now = f.now.Add(time.Minute)
	active, _ := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "yan", Content: "joiner"})
	if active.ID != lonely.ID {
		t.Fatalf("expected yan to join zed's battle")
	}
	f.now = f.now.Add(time.Minute)
	waiting, _ := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "xia", Content: "late"})

	affected, err := f.battle.ExpireStaleBattles(ctx, f.now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(affected) != 0 {
		t.Fatalf("nothing is due yet, got %v", affected)
	}

	affected, err = f.battle.ExpireStaleBattles(ctx, f.now.Add(6*24*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(affected) != 2 {
		t.Fatalf("expected two settled battles, got %v", affected)
	}

	finished, _, _ := f.battles.GetByID(ctx, active.ID)
	if finished.Status != battle.StatusFinished {
		t.Fatalf("expected active battle finished, got %s", finished.Status)
	}
	cancelled, _, _ := f.battles.GetByID(ctx, waiting.ID)
	if cancelled.Status != battle.StatusCancelled || !f.battles.postDeleted(waiting.PostA.ID) {
		t.Fatalf("expected waiting battle cancelled with post removed, got %+v", cancelled)
	}

	again, err := f.battle.ExpireStaleBattles(ctx, f.now.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second sweep must be a no-op, got %v", again)
	}
}

func TestBattleService_GetActiveBattle(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	if _, err := f.battle.GetActiveBattle(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found without battles, got %v", err)
	}

	opened, _ := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "hi"})
	got, err := f.battle.GetActiveBattle(ctx, "alice")
	if err != nil || got.ID != opened.ID {
		t.Fatalf("expected open battle, got %+v err=%v", got, err)
	}

	f.now = f.now.Add(5*24*time.Hour + time.Second)
	if _, err := f.battle.GetActiveBattle(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected lazily expired battle to be not found, got %v", err)
	}
	item, _, _ := f.battles.GetByID(ctx, opened.ID)
	if item.Status != battle.StatusCancelled {
		t.Fatalf("expected lazy sweep to cancel, got %s", item.Status)
	}
}

func TestBattleService_HistoryAndActiveList(t *testing.T) {
	f := newArenaFixture(t)
	ctx := t.Context()

	first := f.activeBattle(t)
	if _, err := f.battle.FinishBattle(ctx, first.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	f.now = f.now.Add(time.Hour)
	second, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "rematch"})
	if err != nil {
		t.Fatalf("rematch: %v", err)
	}
	if _, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "bob", Content: "accept"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	history, err := f.battle.GetUserBattleHistory(ctx, "bob", HistoryPage{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected newest first history, got %+v", history)
	}
	if _, err := f.battle.GetUserBattleHistory(ctx, "bob", HistoryPage{Offset: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid offset, got %v", err)
	}

	active, err := f.battle.ListActiveBattles(ctx, 0)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only the rematch to be active, got %+v", active)
	}

	stats, err := f.battle.GetUserBattleStats(ctx, "nobody")
	if err != nil || stats.UserID != "nobody" || stats.TotalBattles != 0 {
		t.Fatalf("expected zero stats, got %+v err=%v", stats, err)
	}
}
