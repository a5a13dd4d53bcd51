package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/memory"
)

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%d", g.prefix, g.next.Add(1)), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event.Event
}

func (n *recordingNotifier) Notify(_ context.Context, evt event.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) byKind(kind event.Kind) []event.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []event.Event
	for _, evt := range n.events {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}

// trackedBattles records post deletions on top of the memory store.
type trackedBattles struct {
	*memory.BattleRepository

	mu      sync.Mutex
	deleted map[string]bool
}

func newTrackedBattles() *trackedBattles {
	return &trackedBattles{BattleRepository: memory.NewBattleRepository(), deleted: make(map[string]bool)}
}

func (r *trackedBattles) DeletePost(ctx context.Context, postID string) error {
	r.mu.Lock()
	r.deleted[postID] = true
	r.mu.Unlock()
	return r.BattleRepository.DeletePost(ctx, postID)
}

func (r *trackedBattles) postDeleted(postID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleted[postID]
}

type arenaFixture struct {
	now     time.Time
	battles *trackedBattles
	stats   *memory.BattleStatsRepository
	scores  *memory.ScoreRepository
	events  *recordingNotifier
	scoring *ScoringService
	battle  *BattleService
	votes   *VoteService
}

func newArenaFixture(t *testing.T) *arenaFixture {
	t.Helper()

	f := &arenaFixture{
		now:     time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		battles: newTrackedBattles(),
		stats:   memory.NewBattleStatsRepository(),
		scores:  memory.NewScoreRepository(),
		events:  &recordingNotifier{},
	}
	ids := &sequenceIDGenerator{prefix: "id"}

	f.scoring = NewScoringService(f.scores, nil, f.events, nil)
	f.scoring.now = f.clock
	f.battle = NewBattleService(f.battles, f.stats, f.scoring, f.events, ids, BattleServiceConfig{
		Rules: battle.DefaultRules(),
	}, nil)
	f.battle.now = f.clock
	f.votes = NewVoteService(f.battles, f.stats, f.scoring, f.battle, ids, battle.DefaultRules(), nil)
	f.votes.now = f.clock
	return f
}

func (f *arenaFixture) clock() time.Time {
	return f.now
}

// activeBattle opens a battle for alice and joins it with bob.
func (f *arenaFixture) activeBattle(t *testing.T) battle.Battle {
	t.Helper()

	ctx := t.Context()
	if _, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "alice", Content: "I once outran a cheetah"}); err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	joined, err := f.battle.SubmitEntry(ctx, SubmitEntryInput{AuthorID: "bob", Content: "I taught my cat chess"})
	if err != nil {
		t.Fatalf("bob submit: %v", err)
	}
	if joined.Status != battle.StatusActive {
		t.Fatalf("expected bob to join an active battle, got %s", joined.Status)
	}
	return joined
}
