package battle

import (
	"context"
	"time"
)

// Repository describes battle persistence needs from use cases.
// Every mutating method is a single atomic conditional write.
//
// An author holds at most one open entry. Create and Join claim it together
// with storing the post and fail with ErrDuplicateEntry when the author
// already holds one; Cancel and Finish release it.
type Repository interface {
	DeletePost(ctx context.Context, postID string) error
	// Create stores the battle and its post A.
	Create(ctx context.Context, battle Battle) error
	GetByID(ctx context.Context, battleID string) (Battle, bool, error)
	// FindJoinable returns the oldest waiting battle whose deadline is after now
	// and whose author is not excludeAuthorID.
	FindJoinable(ctx context.Context, excludeAuthorID string, now time.Time) (Battle, bool, error)
	FindOpenByAuthor(ctx context.Context, authorID string) (Battle, bool, error)
	// Join stores postB and moves a waiting battle to active. It reports false,
	// storing nothing, when the battle was no longer waiting or its deadline had passed.
	Join(ctx context.Context, battleID string, postB Post, votingDeadline, now time.Time) (bool, error)
	// Cancel moves a waiting battle to cancelled.
	Cancel(ctx context.Context, battleID string, now time.Time) (bool, error)
	// Finish moves an active battle to finished and sets the winner from the
	// counters in the same write. The bool reports whether this call did the transition.
	Finish(ctx context.Context, battleID string, now time.Time) (Battle, bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Battle, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]Battle, error)
	ListActive(ctx context.Context, limit int) ([]Battle, error)
	// CastVote inserts the vote and increments the chosen counter atomically,
	// guarded by status=active and deadline after vote.CreatedAt. It fails with
	// ErrAlreadyVoted or ErrBattleNotActive.
	CastVote(ctx context.Context, vote Vote) (Battle, error)
	HasVoted(ctx context.Context, voterID, battleID string) (bool, error)
	ListVotes(ctx context.Context, battleID string) ([]Vote, error)
}
