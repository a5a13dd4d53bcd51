package progress

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownAction = errors.New("unknown score action")

type ActionKind string

const (
	ActionCreatePost             ActionKind = "CREATE_POST"
	ActionWinBattle              ActionKind = "WIN_BATTLE"
	ActionLoseBattle             ActionKind = "LOSE_BATTLE"
	ActionDrawBattle             ActionKind = "DRAW_BATTLE"
	ActionVoteInBattle           ActionKind = "VOTE_IN_BATTLE"
	ActionReceiveReactionLike    ActionKind = "RECEIVE_REACTION_LIKE"
	ActionReceiveReactionLaugh   ActionKind = "RECEIVE_REACTION_LAUGH"
	ActionReceiveReactionComment ActionKind = "RECEIVE_REACTION_COMMENT"
	ActionStreak3Days            ActionKind = "STREAK_3_DAYS"
	ActionStreak7Days            ActionKind = "STREAK_7_DAYS"
	ActionStreak30Days           ActionKind = "STREAK_30_DAYS"
	ActionWinStreak3             ActionKind = "WIN_STREAK_3"
	ActionWinStreak7             ActionKind = "WIN_STREAK_7"
	ActionWinStreak30            ActionKind = "WIN_STREAK_30"
)

// Premium accounts earn PremiumNumerator/PremiumDenominator of the base points, rounded down.
const (
	PremiumNumerator   = 3
	PremiumDenominator = 2
)

type ActionTable map[ActionKind]int64

func DefaultActionTable() ActionTable {
	return ActionTable{
		ActionCreatePost:             10,
		ActionWinBattle:              50,
		ActionLoseBattle:             10,
		ActionDrawBattle:             20,
		ActionVoteInBattle:           2,
		ActionReceiveReactionLike:    1,
		ActionReceiveReactionLaugh:   2,
		ActionReceiveReactionComment: 3,
		ActionStreak3Days:            30,
		ActionStreak7Days:            100,
		ActionStreak30Days:           500,
		ActionWinStreak3:             25,
		ActionWinStreak7:             75,
		ActionWinStreak30:            300,
	}
}

func ParseActionKind(v string) (ActionKind, error) {
	kind := ActionKind(strings.ToUpper(strings.TrimSpace(v)))
	if _, ok := DefaultActionTable()[kind]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, v)
	}
	return kind, nil
}

// Points returns the delta for an action, applying the premium ratio.
func (t ActionTable) Points(kind ActionKind, premium bool) (int64, error) {
	base, ok := t[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAction, kind)
	}
	if premium {
		return base * PremiumNumerator / PremiumDenominator, nil
	}
	return base, nil
}

// WinStreakAction maps a streak milestone to its bonus action.
func WinStreakAction(milestone int) (ActionKind, bool) {
	switch milestone {
	case 3:
		return ActionWinStreak3, true
	case 7:
		return ActionWinStreak7, true
	case 30:
		return ActionWinStreak30, true
	default:
		return "", false
	}
}

type LevelThreshold struct {
	Level     int
	MinPoints int64
}

// LevelTable is strictly increasing in both level and points.
type LevelTable []LevelThreshold

func DefaultLevelTable() LevelTable {
	return LevelTable{
		{Level: 1, MinPoints: 0},
		{Level: 2, MinPoints: 100},
		{Level: 3, MinPoints: 250},
		{Level: 4, MinPoints: 500},
		{Level: 5, MinPoints: 1000},
		{Level: 6, MinPoints: 1750},
		{Level: 7, MinPoints: 2750},
		{Level: 8, MinPoints: 4000},
		{Level: 9, MinPoints: 5500},
		{Level: 10, MinPoints: 7500},
		{Level: 11, MinPoints: 10000},
		{Level: 12, MinPoints: 13000},
	}
}

// LevelFor returns the highest level whose threshold does not exceed total.
func (t LevelTable) LevelFor(total int64) int {
	level := 0
	for _, row := range t {
		if row.MinPoints > total {
			break
		}
		level = row.Level
	}
	if level == 0 && len(t) > 0 {
		return t[0].Level
	}
	return level
}

type Milestone struct {
	Level int
	Code  string
}

func DefaultMilestones() []Milestone {
	return []Milestone{
		{Level: 5, Code: "rising_star"},
		{Level: 10, Code: "arena_legend"},
	}
}

// MilestonesCrossed returns milestones with previous < level <= current.
func MilestonesCrossed(milestones []Milestone, previous, current int) []Milestone {
	var out []Milestone
	for _, m := range milestones {
		if m.Level > previous && m.Level <= current {
			out = append(out, m)
		}
	}
	return out
}
