package battlestats

import "context"

// Repository describes stats persistence. RecordOutcome applies ApplyOutcome
// atomically and returns the resulting streak.
type Repository interface {
	Get(ctx context.Context, userID string) (Stats, bool, error)
	RecordOutcome(ctx context.Context, userID string, outcome Outcome) (StreakResult, error)
	IncrementVotesCast(ctx context.Context, userID string) error
	IncrementCorrectVotes(ctx context.Context, userIDs []string) error
}
