package battle

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsOpen() bool {
	return s == StatusWaiting || s == StatusActive
}

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusFinished, StatusCancelled:
		return true
	default:
		return false
	}
}

// Post is one immutable battle submission.
type Post struct {
	ID        string
	AuthorID  string
	Content   string
	ImageRef  string
	CreatedAt time.Time
}

// Battle pairs two posts into a timed voting contest.
// Deadline is the matchmaking cutoff while waiting and the voting cutoff while active.
type Battle struct {
	ID           string
	PostA        Post
	PostB        *Post
	Status       Status
	VotesA       int
	VotesB       int
	WinnerPostID string
	CreatedAt    time.Time
	Deadline     time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Vote is a single third-party vote; unique per (VoterID, BattleID).
type Vote struct {
	ID           string
	VoterID      string
	BattleID     string
	ChosenPostID string
	CreatedAt    time.Time
}

func (b Battle) TotalVotes() int {
	return b.VotesA + b.VotesB
}

func (b Battle) AuthorAID() string {
	return b.PostA.AuthorID
}

func (b Battle) AuthorBID() string {
	if b.PostB == nil {
		return ""
	}
	return b.PostB.AuthorID
}

func (b Battle) IsAuthor(userID string) bool {
	if userID == "" {
		return false
	}
	return b.PostA.AuthorID == userID || b.AuthorBID() == userID
}

// Side reports which post the given id refers to.
func (b Battle) Side(postID string) (Side, bool) {
	switch {
	case postID == "":
		return SideNone, false
	case postID == b.PostA.ID:
		return SideA, true
	case b.PostB != nil && postID == b.PostB.ID:
		return SideB, true
	default:
		return SideNone, false
	}
}

func (b Battle) IsExpired(now time.Time) bool {
	return b.Status.IsOpen() && !b.Deadline.After(now)
}

func (b Battle) ValidateBasic() error {
	if b.ID == "" {
		return fmt.Errorf("battle id is required")
	}
	if b.PostA.ID == "" || b.PostA.AuthorID == "" {
		return fmt.Errorf("battle post a is required")
	}
	if !b.Status.Valid() {
		return fmt.Errorf("invalid battle status: %s", b.Status)
	}
	hasOpponent := b.Status == StatusActive || b.Status == StatusFinished
	if hasOpponent != (b.PostB != nil) {
		return fmt.Errorf("battle post b must be set only when active or finished, status=%s", b.Status)
	}
	if b.VotesA < 0 || b.VotesB < 0 {
		return fmt.Errorf("battle votes must be non-negative")
	}
	if b.Status == StatusWaiting && b.TotalVotes() > 0 {
		return fmt.Errorf("waiting battle cannot hold votes")
	}
	if b.WinnerPostID != "" && (b.Status != StatusFinished || b.VotesA == b.VotesB) {
		return fmt.Errorf("winner is only set for a decided finished battle")
	}
	if b.Deadline.IsZero() {
		return fmt.Errorf("battle deadline is required")
	}

	return nil
}
