package progress

import "time"

// ScoreRecord holds a user's points and derived level.
type ScoreRecord struct {
	UserID           string
	CumulativePoints int64
	Level            int
	DailyPoints      int64
	MonthlyPoints    int64
	UpdatedAt        time.Time
}

type Achievement struct {
	UserID     string
	Code       string
	Level      int
	UnlockedAt time.Time
}

// ScoreContext carries optional caller knowledge about the scored account.
type ScoreContext struct {
	// Premium is nil when the caller does not know the flag.
	Premium  *bool
	BattleID string
	Reason   string
}

type ScoreResult struct {
	Action        ActionKind
	Delta         int64
	Total         int64
	PreviousLevel int
	NewLevel      int
	LeveledUp     bool
	Unlocked      []Achievement
}
