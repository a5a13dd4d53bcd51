package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
)

// BattleRepository keeps battles, posts and votes behind one mutex so every
// conditional write is atomic.
type BattleRepository struct {
	mu      sync.RWMutex
	posts   map[string]battle.Post
	battles map[string]battle.Battle
	votes   map[string]battle.Vote
}

func NewBattleRepository() *BattleRepository {
	return &BattleRepository{
		posts:   make(map[string]battle.Post),
		battles: make(map[string]battle.Battle),
		votes:   make(map[string]battle.Vote),
	}
}

func (r *BattleRepository) DeletePost(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, postID)
	return nil
}

func (r *BattleRepository) Create(_ context.Context, item battle.Battle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.battles[item.ID]; exists {
		return fmt.Errorf("battle %s already exists", item.ID)
	}
	if item.Status.IsOpen() && r.hasOpenLocked(item.AuthorAID()) {
		return fmt.Errorf("%w: author_id=%s", battle.ErrDuplicateEntry, item.AuthorAID())
	}
	r.posts[item.PostA.ID] = item.PostA
	r.battles[item.ID] = cloneBattle(item)
	return nil
}

func (r *BattleRepository) GetByID(_ context.Context, battleID string) (battle.Battle, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.battles[battleID]
	if !ok {
		return battle.Battle{}, false, nil
	}
	return cloneBattle(item), true, nil
}

func (r *BattleRepository) FindJoinable(_ context.Context, excludeAuthorID string, now time.Time) (battle.Battle, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found battle.Battle
		ok    bool
	)
	for _, item := range r.battles {
		if item.Status != battle.StatusWaiting || !item.Deadline.After(now) || item.AuthorAID() == excludeAuthorID {
			continue
		}
		if !ok || olderThan(item, found) {
			found, ok = item, true
		}
	}
	if !ok {
		return battle.Battle{}, false, nil
	}
	return cloneBattle(found), true, nil
}

func (r *BattleRepository) FindOpenByAuthor(_ context.Context, authorID string) (battle.Battle, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found battle.Battle
		ok    bool
	)
	for _, item := range r.battles {
		if !item.Status.IsOpen() || !item.IsAuthor(authorID) {
			continue
		}
		if !ok || olderThan(item, found) {
			found, ok = item, true
		}
	}
	if !ok {
		return battle.Battle{}, false, nil
	}
	return cloneBattle(found), true, nil
}

func (r *BattleRepository) Join(_ context.Context, battleID string, postB battle.Post, votingDeadline, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.battles[battleID]
	if !ok || item.Status != battle.StatusWaiting || !item.Deadline.After(now) || item.AuthorAID() == postB.AuthorID {
		return false, nil
	}
	if r.hasOpenLocked(postB.AuthorID) {
		return false, fmt.Errorf("%w: author_id=%s", battle.ErrDuplicateEntry, postB.AuthorID)
	}

	r.posts[postB.ID] = postB
	post := postB
	started := now
	item.PostB = &post
	item.Status = battle.StatusActive
	item.VotesA, item.VotesB = 0, 0
	item.Deadline = votingDeadline
	item.StartedAt = &started
	r.battles[battleID] = item
	return true, nil
}

func (r *BattleRepository) Cancel(_ context.Context, battleID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.battles[battleID]
	if !ok || item.Status != battle.StatusWaiting {
		return false, nil
	}

	finished := now
	item.Status = battle.StatusCancelled
	item.FinishedAt = &finished
	r.battles[battleID] = item
	return true, nil
}

func (r *BattleRepository) Finish(_ context.Context, battleID string, now time.Time) (battle.Battle, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.battles[battleID]
	if !ok || item.Status != battle.StatusActive {
		return battle.Battle{}, false, nil
	}

	finished := now
	item.Status = battle.StatusFinished
	item.WinnerPostID = item.DecidedWinnerPostID()
	item.FinishedAt = &finished
	r.battles[battleID] = item
	return cloneBattle(item), true, nil
}

func (r *BattleRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]battle.Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]battle.Battle, 0)
	for _, item := range r.battles {
		if item.IsExpired(now) {
			out = append(out, cloneBattle(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, 0, limit), nil
}

func (r *BattleRepository) ListByAuthor(_ context.Context, authorID string, limit, offset int) ([]battle.Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]battle.Battle, 0)
	for _, item := range r.battles {
		if item.IsAuthor(authorID) {
			out = append(out, cloneBattle(item))
		}
	}
	sortNewestFirst(out)
	return truncate(out, offset, limit), nil
}

func (r *BattleRepository) ListActive(_ context.Context, limit int) ([]battle.Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]battle.Battle, 0)
	for _, item := range r.battles {
		if item.Status == battle.StatusActive {
			out = append(out, cloneBattle(item))
		}
	}
	sortNewestFirst(out)
	return truncate(out, 0, limit), nil
}

func (r *BattleRepository) CastVote(_ context.Context, vote battle.Vote) (battle.Battle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.battles[vote.BattleID]
	if !ok || item.Status != battle.StatusActive || !item.Deadline.After(vote.CreatedAt) {
		return battle.Battle{}, battle.ErrBattleNotActive
	}
	key := voteKey(vote.VoterID, vote.BattleID)
	if _, exists := r.votes[key]; exists {
		return battle.Battle{}, battle.ErrAlreadyVoted
	}

	side, ok := item.Side(vote.ChosenPostID)
	if !ok {
		return battle.Battle{}, battle.ErrInvalidChoice
	}
	switch side {
	case battle.SideA:
		item.VotesA++
	case battle.SideB:
		item.VotesB++
	}

	r.votes[key] = vote
	r.battles[item.ID] = item
	return cloneBattle(item), nil
}

func (r *BattleRepository) HasVoted(_ context.Context, voterID, battleID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.votes[voteKey(voterID, battleID)]
	return exists, nil
}

func (r *BattleRepository) ListVotes(_ context.Context, battleID string) ([]battle.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]battle.Vote, 0)
	for _, v := range r.votes {
		if v.BattleID == battleID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// hasOpenLocked reports whether authorID is on either side of a waiting or
// active battle. Callers hold r.mu.
func (r *BattleRepository) hasOpenLocked(authorID string) bool {
	for _, item := range r.battles {
		if item.Status.IsOpen() && item.IsAuthor(authorID) {
			return true
		}
	}
	return false
}

func voteKey(voterID, battleID string) string {
	return battleID + "::" + voterID
}

func olderThan(a, b battle.Battle) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func sortNewestFirst(items []battle.Battle) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

func truncate(items []battle.Battle, offset, limit int) []battle.Battle {
	if offset >= len(items) {
		return []battle.Battle{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cloneBattle(item battle.Battle) battle.Battle {
	copied := item
	if item.PostB != nil {
		post := *item.PostB
		copied.PostB = &post
	}
	if item.StartedAt != nil {
		v := *item.StartedAt
		copied.StartedAt = &v
	}
	if item.FinishedAt != nil {
		v := *item.FinishedAt
		copied.FinishedAt = &v
	}
	return copied
}
