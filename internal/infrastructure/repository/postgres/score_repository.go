package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	qb "github.com/riskibarqy/battle-arena/internal/platform/querybuilder"
)

type scoreTableModel struct {
	UserID           string    `db:"user_id"`
	CumulativePoints int64     `db:"cumulative_points"`
	Level            int       `db:"level"`
	DailyPoints      int64     `db:"daily_points"`
	MonthlyPoints    int64     `db:"monthly_points"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type achievementTableModel struct {
	UserID     string    `db:"user_id"`
	Code       string    `db:"code"`
	Level      int       `db:"level"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

var scoreColumns = []string{
	"user_id",
	"cumulative_points",
	"level",
	"daily_points",
	"monthly_points",
	"updated_at",
}

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Get(ctx context.Context, userID string) (progress.ScoreRecord, bool, error) {
	query, args, err := qb.Select(scoreColumns...).From("user_scores").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return progress.ScoreRecord{}, false, fmt.Errorf("build get score query: %w", err)
	}

	var row scoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return progress.ScoreRecord{}, false, nil
		}
		return progress.ScoreRecord{}, false, fmt.Errorf("get score: %w", err)
	}

	return scoreFromRow(row), true, nil
}

func (r *ScoreRepository) AddPoints(ctx context.Context, userID string, delta int64, now time.Time) (progress.ScoreRecord, error) {
	query, args, err := addPointsQuery(userID, delta, now)
	if err != nil {
		return progress.ScoreRecord{}, fmt.Errorf("build add points query: %w", err)
	}

	var row scoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return progress.ScoreRecord{}, fmt.Errorf("add points: %w", err)
	}

	return scoreFromRow(row), nil
}

// addPointsQuery seeds a new row at level 1 or accumulates onto the
// existing one, leaving its level untouched.
func addPointsQuery(userID string, delta int64, now time.Time) (string, []any, error) {
	return qb.InsertModel("user_scores", qb.Conflict{
		Target:    []string{"user_id"},
		Add:       []string{"cumulative_points", "daily_points", "monthly_points"},
		Replace:   []string{"updated_at"},
		Returning: scoreColumns,
	}, scoreTableModel{
		UserID:           userID,
		CumulativePoints: delta,
		Level:            1,
		DailyPoints:      delta,
		MonthlyPoints:    delta,
		UpdatedAt:        now,
	})
}

func (r *ScoreRepository) RaiseLevel(ctx context.Context, userID string, level int, now time.Time) (int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx raise level: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("level").From("user_scores").
		Where(qb.Eq("user_id", userID)).
		ForUpdate("FOR UPDATE").
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build lock score query: %w", err)
	}

	previous := 1
	if err := tx.GetContext(ctx, &previous, lockQuery, lockArgs...); err != nil {
		if !isNotFound(err) {
			return 0, false, fmt.Errorf("lock score: %w", err)
		}
		previous = 1
	}
	if level <= previous {
		return previous, false, nil
	}

	updateQuery, updateArgs, err := qb.Update("user_scores").
		Set("level", level).
		Set("updated_at", now).
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build raise level query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return 0, false, fmt.Errorf("raise level: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit raise level tx: %w", err)
	}

	return previous, true, nil
}

func (r *ScoreRepository) UnlockAchievement(ctx context.Context, achievement progress.Achievement) (bool, error) {
	insertModel := achievementTableModel{
		UserID:     achievement.UserID,
		Code:       achievement.Code,
		Level:      achievement.Level,
		UnlockedAt: achievement.UnlockedAt,
	}
	query, args, err := qb.InsertModel("user_achievements", qb.DoNothing("user_id", "code"), insertModel)
	if err != nil {
		return false, fmt.Errorf("build unlock achievement query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected unlock achievement: %w", err)
	}

	return affected > 0, nil
}

func (r *ScoreRepository) ListAchievements(ctx context.Context, userID string) ([]progress.Achievement, error) {
	query, args, err := qb.Select("user_id", "code", "level", "unlocked_at").From("user_achievements").
		Where(qb.Eq("user_id", userID)).
		OrderBy("level ASC", "code ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list achievements query: %w", err)
	}

	var rows []achievementTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	out := make([]progress.Achievement, 0, len(rows))
	for _, row := range rows {
		out = append(out, progress.Achievement{
			UserID:     row.UserID,
			Code:       row.Code,
			Level:      row.Level,
			UnlockedAt: row.UnlockedAt,
		})
	}
	return out, nil
}

func scoreFromRow(row scoreTableModel) progress.ScoreRecord {
	return progress.ScoreRecord{
		UserID:           row.UserID,
		CumulativePoints: row.CumulativePoints,
		Level:            row.Level,
		DailyPoints:      row.DailyPoints,
		MonthlyPoints:    row.MonthlyPoints,
		UpdatedAt:        row.UpdatedAt,
	}
}
