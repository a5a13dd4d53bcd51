package httpapi

import (
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

type submitEntryRequest struct {
	Content  string `json:"content" validate:"required"`
	ImageRef string `json:"image_ref" validate:"omitempty,max=2048"`
}

type castVoteRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

type internalExpireBattlesRequest struct {
	Now string `json:"now"`
}

type internalScoreEventRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Action   string `json:"action" validate:"required"`
	Premium  *bool  `json:"premium,omitempty"`
	BattleID string `json:"battle_id" validate:"omitempty,max=64"`
	Reason   string `json:"reason" validate:"omitempty,max=200"`
}

type postDTO struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Content   string `json:"content"`
	ImageRef  string `json:"imageRef,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type battleDTO struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	PostA        postDTO  `json:"postA"`
	PostB        *postDTO `json:"postB,omitempty"`
	VotesA       int      `json:"votesA"`
	VotesB       int      `json:"votesB"`
	TotalVotes   int      `json:"totalVotes"`
	WinnerPostID string   `json:"winnerPostId,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	Deadline     string   `json:"deadline"`
	StartedAt    string   `json:"startedAt,omitempty"`
	FinishedAt   string   `json:"finishedAt,omitempty"`
}

type withdrawBattleDTO struct {
	BattleID  string `json:"battleId"`
	Withdrawn bool   `json:"withdrawn"`
}

type canVoteDTO struct {
	BattleID string `json:"battleId"`
	CanVote  bool   `json:"canVote"`
}

type battleStatsDTO struct {
	UserID         string `json:"userId"`
	TotalBattles   int    `json:"totalBattles"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	Draws          int    `json:"draws"`
	CurrentStreak  int    `json:"currentStreak"`
	BestStreak     int    `json:"bestStreak"`
	TotalVotesCast int    `json:"totalVotesCast"`
	CorrectVotes   int    `json:"correctVotes"`
}

type achievementDTO struct {
	Code       string `json:"code"`
	Level      int    `json:"level"`
	UnlockedAt string `json:"unlockedAt"`
}

type scoreSummaryDTO struct {
	UserID           string           `json:"userId"`
	CumulativePoints int64            `json:"cumulativePoints"`
	Level            int              `json:"level"`
	DailyPoints      int64            `json:"dailyPoints"`
	MonthlyPoints    int64            `json:"monthlyPoints"`
	Achievements     []achievementDTO `json:"achievements"`
}

type scoreResultDTO struct {
	Action        string           `json:"action"`
	Delta         int64            `json:"delta"`
	Total         int64            `json:"total"`
	PreviousLevel int              `json:"previousLevel"`
	NewLevel      int              `json:"newLevel"`
	LeveledUp     bool             `json:"leveledUp"`
	Unlocked      []achievementDTO `json:"unlocked"`
}

type expireBattlesDTO struct {
	ExpiredBattleIDs []string `json:"expiredBattleIds"`
	Count            int      `json:"count"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func postToDTO(p battle.Post) postDTO {
	return postDTO{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		ImageRef:  p.ImageRef,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func battleToDTO(item battle.Battle) battleDTO {
	out := battleDTO{
		ID:           item.ID,
		Status:       string(item.Status),
		PostA:        postToDTO(item.PostA),
		VotesA:       item.VotesA,
		VotesB:       item.VotesB,
		TotalVotes:   item.TotalVotes(),
		WinnerPostID: item.WinnerPostID,
		CreatedAt:    formatTime(item.CreatedAt),
		Deadline:     formatTime(item.Deadline),
		StartedAt:    formatTimePtr(item.StartedAt),
		FinishedAt:   formatTimePtr(item.FinishedAt),
	}
	if item.PostB != nil {
		postB := postToDTO(*item.PostB)
		out.PostB = &postB
	}
	return out
}

func battlesToDTO(items []battle.Battle) []battleDTO {
	out := make([]battleDTO, 0, len(items))
	for _, item := range items {
		out = append(out, battleToDTO(item))
	}
	return out
}

func battleStatsToDTO(stats battlestats.Stats) battleStatsDTO {
	return battleStatsDTO{
		UserID:         stats.UserID,
		TotalBattles:   stats.TotalBattles,
		Wins:           stats.Wins,
		Losses:         stats.Losses,
		Draws:          stats.Draws,
		CurrentStreak:  stats.CurrentStreak,
		BestStreak:     stats.BestStreak,
		TotalVotesCast: stats.TotalVotesCast,
		CorrectVotes:   stats.CorrectVotes,
	}
}

func achievementsToDTO(items []progress.Achievement) []achievementDTO {
	out := make([]achievementDTO, 0, len(items))
	for _, item := range items {
		out = append(out, achievementDTO{
			Code:       item.Code,
			Level:      item.Level,
			UnlockedAt: formatTime(item.UnlockedAt),
		})
	}
	return out
}

func scoreSummaryToDTO(summary usecase.ScoreSummary) scoreSummaryDTO {
	return scoreSummaryDTO{
		UserID:           summary.Record.UserID,
		CumulativePoints: summary.Record.CumulativePoints,
		Level:            summary.Record.Level,
		DailyPoints:      summary.Record.DailyPoints,
		MonthlyPoints:    summary.Record.MonthlyPoints,
		Achievements:     achievementsToDTO(summary.Achievements),
	}
}

func scoreResultToDTO(result progress.ScoreResult) scoreResultDTO {
	return scoreResultDTO{
		Action:        string(result.Action),
		Delta:         result.Delta,
		Total:         result.Total,
		PreviousLevel: result.PreviousLevel,
		NewLevel:      result.NewLevel,
		LeveledUp:     result.LeveledUp,
		Unlocked:      achievementsToDTO(result.Unlocked),
	}
}
