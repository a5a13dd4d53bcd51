package battle

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrContentEmpty    = errors.New("post content is empty")
	ErrContentTooLong  = errors.New("post content too long")
	ErrImageRefTooLong = errors.New("image reference too long")
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrNotOwner        = errors.New("caller does not own the battle")
	ErrNotCancellable  = errors.New("battle is not cancellable")
	ErrNotFinishable   = errors.New("battle cannot be finished")
	ErrBattleNotActive = errors.New("battle is not active")
	ErrSelfVote        = errors.New("authors cannot vote in their own battle")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrAlreadyVoted    = errors.New("already voted")
)

type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return "none"
	}
}

// Rules stores matchmaking, voting and paging parameters.
type Rules struct {
	ContentMaxLength    int
	ImageRefMaxLength   int
	MatchmakingWindow   time.Duration
	VotingWindow        time.Duration
	ResolutionThreshold int
	HistoryPageSize     int
	HistoryMaxPageSize  int
}

func DefaultRules() Rules {
	return Rules{
		ContentMaxLength:    280,
		ImageRefMaxLength:   512,
		MatchmakingWindow:   5 * 24 * time.Hour,
		VotingWindow:        24 * time.Hour,
		ResolutionThreshold: 10,
		HistoryPageSize:     20,
		HistoryMaxPageSize:  100,
	}
}

// Normalize fills zero fields from DefaultRules.
func (r Rules) Normalize() Rules {
	d := DefaultRules()
	if r.ContentMaxLength <= 0 {
		r.ContentMaxLength = d.ContentMaxLength
	}
	if r.ImageRefMaxLength <= 0 {
		r.ImageRefMaxLength = d.ImageRefMaxLength
	}
	if r.MatchmakingWindow <= 0 {
		r.MatchmakingWindow = d.MatchmakingWindow
	}
	if r.VotingWindow <= 0 {
		r.VotingWindow = d.VotingWindow
	}
	if r.ResolutionThreshold <= 0 {
		r.ResolutionThreshold = d.ResolutionThreshold
	}
	if r.HistoryPageSize <= 0 {
		r.HistoryPageSize = d.HistoryPageSize
	}
	if r.HistoryMaxPageSize < r.HistoryPageSize {
		r.HistoryMaxPageSize = max(d.HistoryMaxPageSize, r.HistoryPageSize)
	}
	return r
}

// ValidatePostContent checks trimmed content and image reference bounds.
// Content length is counted in runes.
func ValidatePostContent(content, imageRef string, rules Rules) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrContentEmpty
	}
	if n := utf8.RuneCountInString(content); n > rules.ContentMaxLength {
		return fmt.Errorf("%w: max=%d got=%d", ErrContentTooLong, rules.ContentMaxLength, n)
	}
	if n := len(strings.TrimSpace(imageRef)); n > rules.ImageRefMaxLength {
		return fmt.Errorf("%w: max=%d got=%d", ErrImageRefTooLong, rules.ImageRefMaxLength, n)
	}
	return nil
}

// DetermineWinner returns SideNone for a draw.
func DetermineWinner(votesA, votesB int) Side {
	switch {
	case votesA > votesB:
		return SideA
	case votesB > votesA:
		return SideB
	default:
		return SideNone
	}
}

// DecidedWinnerPostID resolves the winning post id from the current counters.
func (b Battle) DecidedWinnerPostID() string {
	switch DetermineWinner(b.VotesA, b.VotesB) {
	case SideA:
		return b.PostA.ID
	case SideB:
		if b.PostB != nil {
			return b.PostB.ID
		}
	}
	return ""
}

// ReachedThreshold reports whether the vote total forces an early finish.
func ReachedThreshold(b Battle, rules Rules) bool {
	return rules.ResolutionThreshold > 0 && b.TotalVotes() >= rules.ResolutionThreshold
}

// PageLimit clamps a requested history page size.
func (r Rules) PageLimit(requested int) int {
	if requested <= 0 {
		return r.HistoryPageSize
	}
	if requested > r.HistoryMaxPageSize {
		return r.HistoryMaxPageSize
	}
	return requested
}
