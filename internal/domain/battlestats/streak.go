package battlestats

import "fmt"

// Milestones are the win-streak lengths that earn a bonus.
var Milestones = []int{3, 7, 30}

func IsMilestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}

// ApplyOutcome advances the aggregate by one finished battle. The returned
// milestone is the new current streak when it hits a milestone, else 0.
func ApplyOutcome(stats Stats, outcome Outcome) (Stats, int, error) {
	switch outcome {
	case OutcomeWin:
		stats.Wins++
		stats.CurrentStreak++
		stats.BestStreak = max(stats.BestStreak, stats.CurrentStreak)
	case OutcomeLoss:
		stats.Losses++
		stats.CurrentStreak = 0
	case OutcomeDraw:
		stats.Draws++
		stats.CurrentStreak = 0
	default:
		return stats, 0, fmt.Errorf("unknown battle outcome: %q", outcome)
	}
	stats.TotalBattles++

	if outcome == OutcomeWin && IsMilestone(stats.CurrentStreak) {
		return stats, stats.CurrentStreak, nil
	}
	return stats, 0, nil
}
