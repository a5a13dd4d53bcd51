package battlestats

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLoss || o == OutcomeDraw
}

// Stats is the per-user battle aggregate.
type Stats struct {
	UserID         string
	TotalBattles   int
	Wins           int
	Losses         int
	Draws          int
	CurrentStreak  int
	BestStreak     int
	TotalVotesCast int
	CorrectVotes   int
	UpdatedAt      time.Time
}

// StreakResult is what recording one outcome produced.
type StreakResult struct {
	CurrentStreak int
	BestStreak    int
	Milestone     int
}
